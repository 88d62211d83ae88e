// Package monitoring serves the copy statistics and the address spaces of a
// running kernel model over HTTP.
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
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/ucopy/mem/vm"
	"github.com/sarchlab/ucopy/usercopy"
)

// Monitor turns a set of address spaces and copy counters into a server that
// can be inspected from outside.
type Monitor struct {
	portNumber int
	stats      *usercopy.Stats
	pageTable  vm.PageTable

	spacesLock sync.Mutex
	spaces     map[vm.PID]*usercopy.Space
}

// NewMonitor creates a new Monitor that reports the process-wide stats.
func NewMonitor() *Monitor {
	return &Monitor{
		stats:  usercopy.DefaultStats(),
		spaces: make(map[vm.PID]*usercopy.Space),
	}
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

// RegisterStats sets the counters to report.
func (m *Monitor) RegisterStats(s *usercopy.Stats) {
	m.stats = s
}

// RegisterPageTable sets the page table that the registered spaces use.
func (m *Monitor) RegisterPageTable(pt vm.PageTable) {
	m.pageTable = pt
}

// RegisterSpace registers an address space to be inspected.
func (m *Monitor) RegisterSpace(s *usercopy.Space) {
	m.spacesLock.Lock()
	defer m.spacesLock.Unlock()

	m.spaces[s.PID] = s
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", m.statsText)
	r.HandleFunc("/api/stats.json", m.statsJSON)
	r.HandleFunc("/api/spaces", m.listSpaces)
	r.HandleFunc("/api/space/{pid}", m.spaceDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring copies with %s\n", url)

	r := m.router()
	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	return url
}

// OpenInBrowser opens the stats page of a started server.
func (m *Monitor) OpenInBrowser(url string) error {
	return browser.OpenURL(url + "/api/stats")
}

func (m *Monitor) statsText(w http.ResponseWriter, _ *http.Request) {
	buf := make([]byte, 128)
	n := m.stats.Format(buf)

	w.Header().Set("Content-Type", "text/plain")
	_, err := w.Write(buf[:n])
	dieOnErr(err)
}

func (m *Monitor) statsJSON(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.stats.Snapshot())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listSpaces(w http.ResponseWriter, _ *http.Request) {
	m.spacesLock.Lock()
	pids := make([]int, 0, len(m.spaces))
	for pid := range m.spaces {
		pids = append(pids, int(pid))
	}
	m.spacesLock.Unlock()

	sort.Ints(pids)

	bytes, err := json.Marshal(pids)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type spaceInfo struct {
	PID   vm.PID
	Size  uint64
	Pages []vm.Page
}

func (m *Monitor) spaceDetails(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.ParseUint(mux.Vars(r)["pid"], 10, 32)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	m.spacesLock.Lock()
	space, found := m.spaces[vm.PID(pid)]
	m.spacesLock.Unlock()

	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Address space not found"))
		dieOnErr(err)

		return
	}

	info := &spaceInfo{PID: space.PID, Size: space.Size()}
	if m.pageTable != nil {
		info.Pages = vm.ListPages(m.pageTable, space.PID)
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(info)
	serializer.SetMaxDepth(3)
	err = serializer.Serialize(w)

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
	dieOnErr(err)

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
