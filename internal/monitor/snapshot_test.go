package monitor

import (
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
)

func keys(s *snapshot) []uint64 {
	out := make([]uint64, len(s.lines))
	for i, line := range s.lines {
		out[i] = line.Key
	}
	return out
}

func TestSnapshotMergesOutOfOrderInsertions(t *testing.T) {
	g := NewGomegaWithT(t)
	s := &snapshot{}

	// Rotated file first, current file second, keys interleaved.
	for _, key := range []uint64{10, 20} {
		g.Expect(s.add(key, "rotated")).To(BeTrue())
	}
	for _, key := range []uint64{15, 30} {
		g.Expect(s.add(key, "current")).To(BeTrue())
	}

	g.Expect(keys(s)).To(Equal([]uint64{10, 15, 20, 30}))
}

func TestSnapshotDiscardsLinesOlderThanMinimum(t *testing.T) {
	g := NewGomegaWithT(t)
	s := &snapshot{}
	s.add(10, "a")
	s.add(20, "b")

	g.Expect(s.add(5, "too old")).To(BeFalse())
	g.Expect(keys(s)).To(Equal([]uint64{10, 20}))
}

func TestSnapshotTiePreservesInsertionOrder(t *testing.T) {
	g := NewGomegaWithT(t)
	s := &snapshot{}
	s.add(10, "first")
	s.add(20, "later")
	s.add(10, "second")

	g.Expect(s.lines[0].Text).To(Equal("first"))
	g.Expect(s.lines[1].Text).To(Equal("second"))
	g.Expect(keys(s)).To(Equal([]uint64{10, 10, 20}))
}

func TestSnapshotEvictsOldestAtCapacity(t *testing.T) {
	g := NewGomegaWithT(t)
	s := &snapshot{}
	for i := 0; i < 300; i++ {
		s.add(uint64(1000+i), fmt.Sprintf("line %d", i))
	}

	g.Expect(s.lines).To(HaveLen(snapshotCapacity))
	g.Expect(s.lines[0].Key).To(Equal(uint64(1050)))
	g.Expect(s.lines[len(s.lines)-1].Key).To(Equal(uint64(1299)))
}

func TestSnapshotStaysSortedUnderMixedInput(t *testing.T) {
	g := NewGomegaWithT(t)
	s := &snapshot{}
	for _, key := range []uint64{50, 10, 70, 30, 70, 20, 60} {
		s.add(key, "x")
	}
	got := keys(s)
	for i := 1; i < len(got); i++ {
		g.Expect(got[i]).To(BeNumerically(">=", got[i-1]))
	}
}
