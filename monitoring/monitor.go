// Package monitoring serves the state of a running simulation over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/monitoring/web"
)

// Monitor turns a simulation into a server so that it can be watched while
// it runs.
type Monitor struct {
	portNumber int

	cachesLock sync.Mutex
	caches     []*cacheEntry

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// A cacheEntry holds what the monitor may read about a cache. While running
// is set, the cache belongs to the goroutine that drives it and only the
// published stats may be served.
type cacheEntry struct {
	sync.Mutex
	cache   cache.Cache
	running bool
	stats   cache.Statistics
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterCache registers a cache to be monitored.
func (m *Monitor) RegisterCache(c cache.Cache) {
	m.cachesLock.Lock()
	defer m.cachesLock.Unlock()

	m.caches = append(m.caches, &cacheEntry{
		cache: c,
		stats: c.Stats(),
	})
}

// BeginRun marks a cache as being driven. Until EndRun is called, the monitor
// does not read the cache itself. BeginRun waits for any serialization of the
// cache that is in progress.
func (m *Monitor) BeginRun(name string) {
	if e := m.findCache(name); e != nil {
		e.Lock()
		e.running = true
		e.Unlock()
	}
}

// EndRun marks a cache as idle again.
func (m *Monitor) EndRun(name string) {
	if e := m.findCache(name); e != nil {
		e.Lock()
		e.running = false
		e.Unlock()
	}
}

// PublishStats stores a copy of the statistics of a cache. The stats API
// serves the last published copy.
func (m *Monitor) PublishStats(name string, s cache.Statistics) {
	if e := m.findCache(name); e != nil {
		e.Lock()
		e.stats = s
		e.Unlock()
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler that serves the monitoring API and web page.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	fServer := http.FileServer(web.GetAssets())
	r.HandleFunc("/api/list_caches", m.listCaches)
	r.HandleFunc("/api/cache/{name}", m.listCacheDetails)
	r.HandleFunc("/api/stats/{name}", m.listCacheStats)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server in the background and
// returns its URL.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":" + strconv.Itoa(m.portNumber)

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("cannot start monitoring server: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, m.Router())
		dieOnErr(err)
	}()

	return url, nil
}

func (m *Monitor) listCaches(w http.ResponseWriter, _ *http.Request) {
	m.cachesLock.Lock()
	names := make([]string, 0, len(m.caches))
	for _, e := range m.caches {
		names = append(names, e.cache.Name())
	}
	m.cachesLock.Unlock()

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listCacheDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	e := m.findCacheOr404(w, name)
	if e == nil {
		return
	}

	e.Lock()
	defer e.Unlock()

	if e.running {
		writeRunning(w)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(e.cache)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type statsRsp struct {
	Name       string           `json:"name"`
	Stats      cache.Statistics `json:"stats"`
	HitRate    float64          `json:"hit_rate"`
	HasHitRate bool             `json:"has_hit_rate"`
}

func (m *Monitor) listCacheStats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	e := m.findCacheOr404(w, name)
	if e == nil {
		return
	}

	e.Lock()
	rsp := statsRsp{
		Name:  e.cache.Name(),
		Stats: e.stats,
	}
	e.Unlock()

	rate, err := rsp.Stats.HitRate()
	if err == nil {
		rsp.HitRate = rate
		rsp.HasHitRate = true
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type fieldReq struct {
	CacheName string `json:"cache_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	e := m.findCacheOr404(w, req.CacheName)
	if e == nil {
		return
	}

	e.Lock()
	defer e.Unlock()

	if e.running {
		writeRunning(w)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(e.cache)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findCache(name string) *cacheEntry {
	m.cachesLock.Lock()
	defer m.cachesLock.Unlock()

	for _, e := range m.caches {
		if e.cache.Name() == name {
			return e
		}
	}

	return nil
}

func (m *Monitor) findCacheOr404(
	w http.ResponseWriter,
	name string,
) *cacheEntry {
	e := m.findCache(name)
	if e == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Cache not found"))
		dieOnErr(err)
	}

	return e
}

func writeRunning(w http.ResponseWriter) {
	w.WriteHeader(http.StatusConflict)
	_, err := w.Write([]byte("Cache is running"))
	dieOnErr(err)
}

type progressRsp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	rsp := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		finished, total := b.Progress()
		rsp = append(rsp, progressRsp{
			ID:        b.ID,
			Name:      b.Name,
			StartTime: b.StartTime,
			Total:     total,
			Finished:  finished,
		})
	}
	m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
