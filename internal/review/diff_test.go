package review_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stewardhq/steward/internal/review"
)

const sampleDiff = `diff --git a/internal/auth/login.go b/internal/auth/login.go
index 1111111..2222222 100644
--- a/internal/auth/login.go
+++ b/internal/auth/login.go
@@ -10,7 +10,7 @@ func Login() error {
-	return errors.New("pasword")
+	return errors.New("password")
diff --git a/README.md b/README.md
index 3333333..4444444 100644
--- a/README.md
+++ b/README.md
@@ -1,3 +1,4 @@
 # Project
+New section`

var _ = Describe("ExtractFileSection", func() {
	It("returns the section for a file in the middle of the diff", func() {
		section := review.ExtractFileSection(sampleDiff, "internal/auth/login.go")

		Expect(section).To(HavePrefix("diff --git a/internal/auth/login.go"))
		Expect(section).To(ContainSubstring(`errors.New("password")`))
		Expect(section).NotTo(ContainSubstring("README.md"))
	})

	It("returns the last section up to the end of the diff", func() {
		section := review.ExtractFileSection(sampleDiff, "README.md")

		Expect(section).To(HavePrefix("diff --git a/README.md"))
		Expect(section).To(HaveSuffix("+New section"))
	})

	It("returns empty for a file not present in the diff", func() {
		Expect(review.ExtractFileSection(sampleDiff, "missing.go")).To(BeEmpty())
	})

	It("returns empty for an empty diff", func() {
		Expect(review.ExtractFileSection("", "internal/auth/login.go")).To(BeEmpty())
	})
})

var _ = Describe("DiffAssembler", func() {
	It("joins sections with a blank line", func() {
		asm := review.NewDiffAssembler(1000)

		Expect(asm.Append("section one")).To(BeTrue())
		Expect(asm.Append("section two")).To(BeTrue())

		Expect(asm.String()).To(Equal("section one\n\nsection two\n\n"))
		Expect(asm.Truncated()).To(BeFalse())
	})

	It("cuts exactly at the cap and appends the truncation suffix", func() {
		asm := review.NewDiffAssembler(10)

		Expect(asm.Append("0123456789ABCDEF")).To(BeFalse())

		Expect(asm.String()).To(Equal("0123456789" + review.TruncationSuffix))
		Expect(asm.Truncated()).To(BeTrue())
	})

	It("refuses further sections after truncation", func() {
		asm := review.NewDiffAssembler(10)
		asm.Append(strings.Repeat("x", 20))
		before := asm.String()

		Expect(asm.Append("more")).To(BeFalse())
		Expect(asm.String()).To(Equal(before))
	})

	It("truncates when the separator pushes past the cap", func() {
		asm := review.NewDiffAssembler(5)

		Expect(asm.Append("12345")).To(BeFalse())

		Expect(asm.String()).To(Equal("12345" + review.TruncationSuffix))
		Expect(asm.Truncated()).To(BeTrue())
	})
})
