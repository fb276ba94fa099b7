package nfce

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocateHeader", func() {
	It("returns the index after the first header line", func() {
		idx, ok := LocateHeader([]string{"CNPJ 00.000.000/0001-00", "  " + HeaderPhrase + "  ", HeaderPhrase})
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(2))
	})

	It("reports a missing header", func() {
		_, ok := LocateHeader([]string{"Item Descrição Qtde. Unid. Vl. unid.", "Vl. total"})
		Expect(ok).To(BeFalse())
	})

	It("does not match a header with different spacing", func() {
		_, ok := LocateHeader([]string{"Item  Descrição Qtde. Unid. Vl. unid. Vl. total"})
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ParseRow", func() {
	var (
		line string
		item LineItem
		ok   bool
	)

	JustBeforeEach(func() {
		item, ok = ParseRow(line)
	})

	When("the line has exactly six tokens", func() {
		BeforeEach(func() {
			line = "001 DETERGENTE 2 UN 2,39 4,78"
		})

		It("is a row", func() {
			Expect(ok).To(BeTrue())
		})

		It("uses the single middle token as description", func() {
			Expect(item.Description).To(Equal("DETERGENTE"))
		})

		It("assigns the last four tokens right to left", func() {
			Expect(item.Quantity).To(Equal("2"))
			Expect(item.Unit).To(Equal("UN"))
			Expect(item.UnitValue).To(Equal("2,39"))
			Expect(item.TotalValue).To(Equal("4,78"))
		})

		It("parses the total", func() {
			Expect(item.AmountParsed).To(BeTrue())
			Expect(item.Amount).To(Equal(4.78))
		})
	})

	When("the description has many words and irregular spacing", func() {
		BeforeEach(func() {
			line = "  012   BISCOITO\tRECHEADO CHOCOLATE 140G  3 PCT 3,15 9,45 "
		})

		It("rejoins the description with single spaces", func() {
			Expect(ok).To(BeTrue())
			Expect(item.ItemID).To(Equal("012"))
			Expect(item.Description).To(Equal("BISCOITO RECHEADO CHOCOLATE 140G"))
		})
	})

	When("the line has five tokens", func() {
		BeforeEach(func() {
			line = "001 A 1 UN 1,00"
		})

		It("is not a row", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the first token has a non-digit", func() {
		BeforeEach(func() {
			line = "01A PRODUTO 1 UN 1,00 1,00"
		})

		It("is not a row", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the first token is a signed number", func() {
		BeforeEach(func() {
			line = "-01 PRODUTO 1 UN 1,00 1,00"
		})

		It("is not a row", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the first token uses non-ASCII digits", func() {
		BeforeEach(func() {
			line = "٠٠١ PRODUTO 1 UN 1,00 1,00"
		})

		It("is not a row", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the line is blank", func() {
		BeforeEach(func() {
			line = "   "
		})

		It("is not a row", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the id has more than three digits", func() {
		BeforeEach(func() {
			line = "7891000100103 PRODUTO 1 UN 1,00 1,00"
		})

		It("is a row outside continuity checks", func() {
			Expect(ok).To(BeTrue())
			Expect(item.Sequenced()).To(BeFalse())
		})
	})
})

var _ = Describe("SequenceValidator", func() {
	var validator SequenceValidator

	row := func(id string) LineItem { return LineItem{ItemID: id} }

	BeforeEach(func() {
		validator = SequenceValidator{}
	})

	It("accepts any first row", func() {
		Expect(validator.Accept(row("042"))).To(BeTrue())
		last, ok := validator.Last()
		Expect(ok).To(BeTrue())
		Expect(last).To(Equal(42))
	})

	It("accepts the next id", func() {
		validator.Accept(row("001"))
		Expect(validator.Accept(row("002"))).To(BeTrue())
	})

	It("rejects a gap without moving the state", func() {
		validator.Accept(row("001"))
		Expect(validator.Accept(row("005"))).To(BeFalse())
		last, _ := validator.Last()
		Expect(last).To(Equal(1))
	})

	It("rejects a repeated id", func() {
		validator.Accept(row("001"))
		Expect(validator.Accept(row("001"))).To(BeFalse())
	})

	It("accepts ids of other lengths and records them", func() {
		validator.Accept(row("001"))
		Expect(validator.Accept(row("10"))).To(BeTrue())
		Expect(validator.Accept(row("011"))).To(BeTrue())
	})

	It("accepts ids too long for an int without recording them", func() {
		validator.Accept(row("001"))
		Expect(validator.Accept(row("99999999999999999999999"))).To(BeTrue())
		last, _ := validator.Last()
		Expect(last).To(Equal(1))
	})

	It("forgets its state on reset", func() {
		validator.Accept(row("015"))
		validator.Reset()
		_, ok := validator.Last()
		Expect(ok).To(BeFalse())
		Expect(validator.Accept(row("001"))).To(BeTrue())
	})
})

var _ = Describe("ParseContinuityPolicy", func() {
	It("parses the known policies", func() {
		p, err := ParseContinuityPolicy("document")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(ContinuityPerDocument))
		Expect(p.String()).To(Equal("document"))

		p, err = ParseContinuityPolicy("page")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(ContinuityPerPage))
	})

	It("rejects unknown policies", func() {
		_, err := ParseContinuityPolicy("corpus")
		Expect(err).To(HaveOccurred())
	})
})
