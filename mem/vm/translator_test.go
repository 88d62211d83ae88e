package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("ProcessTranslator", func() {
	var (
		mockCtrl   *gomock.Controller
		pageTable  *MockPageTable
		translator ProcessTranslator
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		pageTable = NewMockPageTable(mockCtrl)
		pageTable.EXPECT().GetLog2PageSize().Return(uint64(12)).AnyTimes()

		translator = NewProcessTranslator(pageTable, 7)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should translate a valid page", func() {
		pageTable.EXPECT().
			Find(PID(7), uint64(0x3000)).
			Return(Page{PID: 7, VAddr: 0x3000, PAddr: 0x5000, Valid: true}, true)

		pAddr, ok := translator.Translate(0x3000)

		Expect(ok).To(BeTrue())
		Expect(pAddr).To(Equal(uint64(0x5000)))
	})

	It("should report physical page zero as mapped", func() {
		pageTable.EXPECT().
			Find(PID(7), uint64(0x3000)).
			Return(Page{PID: 7, VAddr: 0x3000, PAddr: 0, Valid: true}, true)

		pAddr, ok := translator.Translate(0x3000)

		Expect(ok).To(BeTrue())
		Expect(pAddr).To(Equal(uint64(0)))
	})

	It("should report a missing page as unmapped", func() {
		pageTable.EXPECT().
			Find(PID(7), uint64(0x3000)).
			Return(Page{}, false)

		_, ok := translator.Translate(0x3000)

		Expect(ok).To(BeFalse())
	})

	It("should report an invalid page as unmapped", func() {
		pageTable.EXPECT().
			Find(PID(7), uint64(0x3000)).
			Return(Page{PID: 7, VAddr: 0x3000, PAddr: 0x5000}, true)

		_, ok := translator.Translate(0x3000)

		Expect(ok).To(BeFalse())
	})

	It("should panic on an unaligned address", func() {
		Expect(func() { translator.Translate(0x3001) }).To(Panic())
	})
})
