package receipt

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(filepath.Join(tmpDir, "uploads"))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			name string
			key  string
			err  error
		)

		BeforeEach(func() {
			name = "run-1_001_a.pdf"
		})

		JustBeforeEach(func() {
			key, err = storage.Save(name, []byte("%PDF-1.4"))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the name as key", func() {
			Expect(key).To(Equal(name))
		})

		It("writes the file to disk", func() {
			Expect(filepath.Join(tmpDir, "uploads", name)).To(BeAnExistingFile())
		})

		When("the name contains directories", func() {
			BeforeEach(func() {
				name = "../../escape.pdf"
			})

			It("keeps the file inside the storage directory", func() {
				Expect(key).To(Equal("escape.pdf"))
				Expect(filepath.Join(tmpDir, "uploads", "escape.pdf")).To(BeAnExistingFile())
				Expect(filepath.Join(tmpDir, "escape.pdf")).NotTo(BeAnExistingFile())
			})
		})
	})

	Describe("Get", func() {
		It("reads a saved file", func() {
			key, err := storage.Save("a.pdf", []byte("content"))
			Expect(err).NotTo(HaveOccurred())
			data, err := storage.Get(key)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("content"))
		})

		It("fails for a missing file", func() {
			_, err := storage.Get("missing.pdf")
			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("Delete", func() {
		It("removes a saved file", func() {
			key, err := storage.Save("a.pdf", []byte("content"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Delete(key)).To(Succeed())
			Expect(filepath.Join(tmpDir, "uploads", key)).NotTo(BeAnExistingFile())
		})

		It("fails for a missing file", func() {
			Expect(storage.Delete("missing.pdf")).To(MatchError(os.ErrNotExist))
		})
	})
})
