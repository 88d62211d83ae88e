package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ucopy/memory"
)

var _ = Describe("Storage", func() {
	It("should read and write in single unit", func() {
		storage := memory.NewStorage(4096)
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())

		res, err := storage.Read(0, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := memory.NewStorage(8192)
		Expect(storage.Write(4094, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(4094, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read zeros from untouched memory", func() {
		storage := memory.NewStorage(8192)

		res, err := storage.Read(100, 3)

		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{0, 0, 0}))
	})

	It("should support small units", func() {
		storage := memory.NewStorageWithUnitSize(64, 16)
		Expect(storage.Write(14, []byte("abcdefgh"))).To(Succeed())

		res, _ := storage.Read(14, 8)
		Expect(string(res)).To(Equal("abcdefgh"))
	})

	It("should return error if accessing over the capacity", func() {
		storage := memory.NewStorage(4096)

		err := storage.Write(4097, []byte{1})
		Expect(err).To(MatchError(memory.ErrBeyondCapacity))

		_, err = storage.Read(4095, 2)
		Expect(err).To(MatchError(memory.ErrBeyondCapacity))
	})
})
