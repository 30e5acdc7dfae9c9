package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/cadscene/engine/containers"
	"github.com/spaghettifunk/cadscene/engine/core"
	"github.com/spaghettifunk/cadscene/engine/resources"
	"github.com/spaghettifunk/cadscene/engine/resources/loaders"
)

var ErrManagerClosed = errors.New("asset manager already closed")

// DefaultSettleDelay is how long a changed script must stay quiet before it
// is reported; editors usually write a file in several steps.
const DefaultSettleDelay = 150 * time.Millisecond

const pendingCapacity = 256

type AssetInfo struct {
	Path string
	Type resources.ResourceType
}

/**
 * @brief AssetManager indexes scene scripts and palette files under a set of
 * directories and individual files and, once watching, reports the ones that
 * were created or rewritten on Changes().
 */
type AssetManager struct {
	assets map[string]AssetInfo
	mutex  sync.RWMutex

	// roots are watched recursively; files are watched through their parent
	// directory, whose other entries are ignored.
	roots []string
	files map[string]bool

	settle   time.Duration
	pending  *containers.RingQueue[string]
	lastSeen time.Time

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	started  bool
	changes  chan string
	errors   chan error
	wg       sync.WaitGroup
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		files:    make(map[string]bool),
		settle:   DefaultSettleDelay,
		pending:  containers.NewRingQueue[string](pendingCapacity),
		fsnotify: fsWatch,
		changes:  make(chan string, pendingCapacity),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

// SetSettleDelay must be called before Initialize.
func (am *AssetManager) SetSettleDelay(d time.Duration) {
	am.settle = d
}

// Initialize indexes every directory and file and starts watching them.
// Paths are made absolute so overlapping inputs share one watch.
func (am *AssetManager) Initialize(paths ...string) error {
	if am.isClosed {
		return ErrManagerClosed
	}
	for _, p := range paths {
		p, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			err = am.addRecursive(p)
		} else {
			err = am.addFile(p)
		}
		if err != nil {
			return err
		}
	}

	am.started = true
	am.wg.Add(1)
	go am.start()
	return nil
}

// Changes delivers script and palette paths after they settle. Closed by
// Shutdown.
func (am *AssetManager) Changes() <-chan string {
	return am.changes
}

// Errors delivers watcher failures. Closed by Shutdown.
func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

// Assets lists indexed paths of type t, sorted.
func (am *AssetManager) Assets(t resources.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	var paths []string
	for p, info := range am.assets {
		if info.Type == t {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// LoadAsset reads an indexed file with the loader for its type.
func (am *AssetManager) LoadAsset(path string) (*resources.Resource, error) {
	am.mutex.RLock()
	asset, exists := am.assets[path]
	am.mutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("asset not found: %s", path)
	}

	loader := loaders.ForType(asset.Type)
	if loader == nil {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(path)
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	if !am.started {
		close(am.changes)
		close(am.errors)
		return am.fsnotify.Close()
	}
	am.wg.Wait()
	return nil
}

// addRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	am.roots = append(am.roots, name)
	return am.watchRecursive(name, false)
}

// addFile indexes a single file and watches its directory, so the watch
// survives editors that replace the file instead of writing it in place.
func (am *AssetManager) addFile(name string) error {
	if am.handleFileEvent(name) == resources.ResourceTypeNone {
		return fmt.Errorf("%s is neither a script nor a palette", name)
	}
	am.files[name] = true
	return am.fsnotify.Add(filepath.Dir(name))
}

// tracked reports whether path lies under a watched root or is one of the
// individually watched files.
func (am *AssetManager) tracked(path string) bool {
	if am.files[path] {
		return true
	}
	for _, root := range am.roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (am *AssetManager) start() {
	defer am.wg.Done()

	ticker := time.NewTicker(am.tick())
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			select {
			case am.errors <- err:
			default:
			}

		case now := <-ticker.C:
			am.flush(now)

		case <-am.done:
			am.fsnotify.Close()
			close(am.changes)
			close(am.errors)
			return
		}
	}
}

func (am *AssetManager) tick() time.Duration {
	if am.settle <= 0 {
		return 10 * time.Millisecond
	}
	return am.settle / 3
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if !am.tracked(e.Name) {
		return
	}
	s, err := os.Stat(e.Name)
	if err == nil && s != nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(e.Name, false); err != nil {
				core.LogWarn("unable to watch %s: %s", e.Name, err)
			}
		}
		return
	}

	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if am.handleFileEvent(e.Name) != resources.ResourceTypeNone {
			am.queue(e.Name)
		}
	}
	// Can't stat a deleted path, so it may have been a directory too.
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		am.removeAsset(e.Name)
		_ = am.fsnotify.Remove(e.Name)
	}
}

func (am *AssetManager) queue(path string) {
	am.lastSeen = time.Now()
	if am.pending.Contains(path) {
		return
	}
	if err := am.pending.Enqueue(path); err != nil {
		core.LogWarn("dropping change to %s: %s", path, err)
	}
}

// flush reports pending paths once no event arrived for the settle delay.
func (am *AssetManager) flush(now time.Time) {
	if am.pending.IsEmpty() || now.Sub(am.lastSeen) < am.settle {
		return
	}
	for !am.pending.IsEmpty() {
		path, _ := am.pending.Dequeue()
		select {
		case am.changes <- path:
		case <-am.done:
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) resources.ResourceType {
	assetType := resources.DetermineType(path)
	if assetType == resources.ResourceTypeNone {
		return assetType
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[path]
	info.Path = path
	info.Type = assetType
	am.assets[path] = info
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}
