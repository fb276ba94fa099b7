package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/nfce-extractor/internal/nfce"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	newRun := func(id string, createdAt time.Time) *Run {
		return &Run{
			ID:        id,
			CreatedAt: createdAt,
			Receipts:  []Receipt{{Index: 1, Filename: "a.pdf", StoredAs: id + "_001_a.pdf", ContentType: "application/pdf", Size: 10}},
			Result: *nfce.NewCorpusResult([]nfce.DocumentResult{{
				Name: "a.pdf",
				Rows: []nfce.LineItem{{
					ItemID: "001", Description: "ARROZ", Quantity: "1", Unit: "UN",
					UnitValue: "30,00", TotalValue: "30,00", Amount: 30, AmountParsed: true,
				}},
				Total: 30,
				Tally: nfce.Tally{Pages: 1},
			}}),
		}
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveRun", func() {
		var (
			run *Run
			err error
		)

		BeforeEach(func() {
			run = newRun("run-1", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
		})

		JustBeforeEach(func() {
			err = db.SaveRun(run)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("round-trips the run", func() {
			saved, getErr := db.GetRun("run-1")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.CreatedAt.Equal(run.CreatedAt)).To(BeTrue())
			Expect(saved.Receipts).To(Equal(run.Receipts))
			Expect(saved.Result).To(Equal(run.Result))
		})

		It("persists across reopening the database", func() {
			Expect(db.Close()).To(Succeed())
			var openErr error
			db, openErr = NewBoltDB(dbPath)
			Expect(openErr).NotTo(HaveOccurred())

			saved, getErr := db.GetRun("run-1")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.Result.Documents[0].Total).To(Equal(30.0))
		})
	})

	Describe("GetRun", func() {
		When("the run does not exist", func() {
			It("returns ErrRunNotFound", func() {
				_, err := db.GetRun("missing")
				Expect(err).To(MatchError(ErrRunNotFound))
			})
		})
	})

	Describe("ListRuns", func() {
		When("runs exist", func() {
			BeforeEach(func() {
				Expect(db.SaveRun(newRun("old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))).To(Succeed())
				Expect(db.SaveRun(newRun("new", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))).To(Succeed())
			})

			It("returns them newest first", func() {
				runs, err := db.ListRuns()
				Expect(err).NotTo(HaveOccurred())
				Expect(runs).To(HaveLen(2))
				Expect(runs[0].ID).To(Equal("new"))
				Expect(runs[1].ID).To(Equal("old"))
			})
		})

		When("no runs exist", func() {
			It("returns an empty list", func() {
				runs, err := db.ListRuns()
				Expect(err).NotTo(HaveOccurred())
				Expect(runs).To(BeEmpty())
			})
		})
	})

	Describe("DeleteRun", func() {
		BeforeEach(func() {
			Expect(db.SaveRun(newRun("run-1", time.Now()))).To(Succeed())
		})

		It("removes the run", func() {
			Expect(db.DeleteRun("run-1")).To(Succeed())
			_, err := db.GetRun("run-1")
			Expect(err).To(MatchError(ErrRunNotFound))
		})

		It("does not fail for unknown IDs", func() {
			Expect(db.DeleteRun("missing")).To(Succeed())
		})
	})
})
