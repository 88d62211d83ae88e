package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ucopy/mem/vm"
	"github.com/sarchlab/ucopy/memory"
	"github.com/sarchlab/ucopy/usercopy"
)

var _ = Describe("Monitor", func() {
	var (
		m         *Monitor
		stats     *usercopy.Stats
		pageTable vm.PageTable
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		stats = &usercopy.Stats{}
		pageTable = vm.NewPageTable(12)
		pageTable.Insert(vm.Page{PID: 2, VAddr: 0x1000, PAddr: 0x3000, Valid: true})

		m = NewMonitor()
		m.RegisterStats(stats)
		m.RegisterPageTable(pageTable)
		m.RegisterSpace(usercopy.NewSpace(pageTable, 2, 0x8000))
	})

	It("should fall back to a random port for reserved ports", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should report the stats as text", func() {
		copier := usercopy.MakeBuilder().
			WithPhysicalMemory(memory.NewStorage(1 << 16)).
			WithStats(stats).
			Build()
		space := usercopy.NewSpace(pageTable, 2, 0x8000)
		_ = copier.CopyIn(space, make([]byte, 4), 0x1000, 4)
		_ = copier.CopyInString(space, make([]byte, 4), 0x1000, 4)

		rec := get("/api/stats")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal("copyin: 1\ncopyinstr: 1\n"))
	})

	It("should report the stats as JSON", func() {
		rec := get("/api/stats.json")

		snapshot := usercopy.StatsSnapshot{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &snapshot)).To(Succeed())
		Expect(snapshot).To(Equal(usercopy.StatsSnapshot{}))
	})

	It("should list the registered spaces", func() {
		m.RegisterSpace(usercopy.NewSpace(pageTable, 1, 0x1000))

		rec := get("/api/spaces")

		Expect(rec.Body.String()).To(Equal("[1,2]"))
	})

	It("should serialize a space", func() {
		rec := get("/api/space/2")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should return 404 for unknown spaces", func() {
		rec := get("/api/space/9")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should return 400 for a malformed pid", func() {
		rec := get("/api/space/abc")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report resource usage", func() {
		rec := get("/api/resource")

		rsp := resourceRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})
})
