package monitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"logmon/internal/fileutil"
	"logmon/internal/sortkey"
)

const base = "/var/log/app/events"

// stamped formats a line the way the observed writer does, with the
// millisecond field carrying the ordering for the test.
func stamped(ms int, text string) string {
	return fmt.Sprintf("[2026-08-29 10:00:00.%03d] %s", ms, text)
}

func writeLines(t *testing.T, fsys afero.Fs, path string, lines ...string) {
	t.Helper()
	var data string
	for _, line := range lines {
		data += line + "\n"
	}
	if err := afero.WriteFile(fsys, path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line.Text
	}
	return out
}

func TestInitialSnapshotMergesRotationFiles(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()
	writeLines(t, fsys, base+".1.txt", stamped(10, "r1"), stamped(20, "r2"))
	writeLines(t, fsys, base+".txt", stamped(15, "c1"), stamped(30, "c2"))

	m := NewWithFS(fsys, []string{base}, nil, sortkey.Parse, nil)

	g.Expect(texts(m.InitialLines())).To(Equal([]string{
		stamped(10, "r1"),
		stamped(15, "c1"),
		stamped(20, "r2"),
		stamped(30, "c2"),
	}))
}

func TestInitialSnapshotSkipsUnkeyedLinesButAdvancesCursor(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()
	keyed := stamped(5, "ok")
	writeLines(t, fsys, base+".txt", keyed, "stack trace continuation")

	m := NewWithFS(fsys, []string{base}, nil, sortkey.Parse, nil)

	g.Expect(texts(m.InitialLines())).To(Equal([]string{keyed}))
	want := int64(len(keyed) + 1 + len("stack trace continuation") + 1)
	g.Expect(m.Cursors()[base+".txt"]).To(Equal(want))
}

func TestInitialSnapshotLeavesTrailingPartialLineForPoller(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()
	complete := stamped(1, "done")
	content := complete + "\n" + stamped(2, "in progr")
	g.Expect(afero.WriteFile(fsys, base+".txt", []byte(content), 0o644)).To(Succeed())

	var delivered []string
	m := NewWithFS(fsys, []string{base}, func(line string) {
		delivered = append(delivered, line)
	}, sortkey.Parse, nil)

	g.Expect(texts(m.InitialLines())).To(Equal([]string{complete}))
	g.Expect(m.Cursors()[base+".txt"]).To(Equal(int64(len(complete) + 1)))

	// Writer finishes the line; next tick delivers only the remainder.
	g.Expect(fileutil.AppendString(fsys, base+".txt", "ess\n")).To(Succeed())
	m.poll()
	g.Expect(delivered).To(Equal([]string{stamped(2, "in progress")}))
}

func TestMissingFilesGetZeroCursors(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()

	m := NewWithFS(fsys, []string{base}, nil, sortkey.Parse, nil)

	g.Expect(m.InitialLines()).To(BeEmpty())
	g.Expect(m.Cursors()[base+".txt"]).To(Equal(int64(0)))
	g.Expect(m.Cursors()[base+".1.txt"]).To(Equal(int64(0)))
}

func TestPollDeliversNewLinesExactlyOnce(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()
	writeLines(t, fsys, base+".txt", stamped(1, "old"))

	var delivered []string
	m := NewWithFS(fsys, []string{base}, func(line string) {
		delivered = append(delivered, line)
	}, sortkey.Parse, nil)

	m.poll()
	g.Expect(delivered).To(BeEmpty())

	g.Expect(fileutil.AppendString(fsys, base+".txt", "two\nthree\n")).To(Succeed())
	m.poll()
	g.Expect(delivered).To(Equal([]string{"two", "three"}))

	m.poll()
	g.Expect(delivered).To(Equal([]string{"two", "three"}))
}

func TestPollHoldsPartialLineUntilComplete(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()
	writeLines(t, fsys, base+".txt", "first")

	var delivered []string
	m := NewWithFS(fsys, []string{base}, func(line string) {
		delivered = append(delivered, line)
	}, sortkey.Parse, nil)
	cursor := m.Cursors()[base+".txt"]

	g.Expect(fileutil.AppendString(fsys, base+".txt", "parti")).To(Succeed())
	m.poll()
	g.Expect(delivered).To(BeEmpty())
	g.Expect(m.Cursors()[base+".txt"]).To(Equal(cursor))

	g.Expect(fileutil.AppendString(fsys, base+".txt", "al\n")).To(Succeed())
	m.poll()
	g.Expect(delivered).To(Equal([]string{"partial"}))
	g.Expect(m.Cursors()[base+".txt"]).To(Equal(cursor + int64(len("partial\n"))))
}

func TestPollReplaysReplacedFileFromTheTop(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()
	writeLines(t, fsys, base+".txt", stamped(1, "long original content here"))

	var delivered []string
	m := NewWithFS(fsys, []string{base}, func(line string) {
		delivered = append(delivered, line)
	}, sortkey.Parse, nil)

	// Rotation swapped a shorter file into place.
	writeLines(t, fsys, base+".txt", "x")
	m.poll()
	g.Expect(delivered).To(Equal([]string{"x"}))
	g.Expect(m.Cursors()[base+".txt"]).To(Equal(int64(2)))
}

func TestPollSurvivesFileDisappearing(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()
	writeLines(t, fsys, base+".txt", "aaaa")

	var delivered []string
	m := NewWithFS(fsys, []string{base}, func(line string) {
		delivered = append(delivered, line)
	}, sortkey.Parse, nil)

	g.Expect(fsys.Remove(base + ".txt")).To(Succeed())
	m.poll()
	g.Expect(delivered).To(BeEmpty())

	writeLines(t, fsys, base+".txt", "b")
	m.poll()
	g.Expect(delivered).To(Equal([]string{"b"}))
}

func TestStopDuringInFlightDeliveryJoinsCleanly(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()
	writeLines(t, fsys, base+".txt", "first")

	entered := make(chan struct{})
	release := make(chan struct{})
	var delivered []string
	m := NewWithFS(fsys, []string{base}, func(line string) {
		delivered = append(delivered, line)
		entered <- struct{}{}
		<-release
	}, sortkey.Parse, nil)

	g.Expect(m.Start(context.Background())).To(Succeed())
	g.Expect(fileutil.AppendString(fsys, base+".txt", "second\n")).To(Succeed())

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery never started")
	}

	// Tear down while the tick is still inside the callback; Stop must
	// cancel, wait for the tick to finish, and return without the loop
	// touching monitor state again.
	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	g.Expect(delivered).To(Equal([]string{"second"}))
}

func TestStartRejectsSecondStartAndStopIsIdempotent(t *testing.T) {
	g := NewGomegaWithT(t)
	fsys := afero.NewMemMapFs()
	m := NewWithFS(fsys, []string{base}, nil, sortkey.Parse, nil)

	g.Expect(m.Start(context.Background())).To(Succeed())
	g.Expect(m.Start(context.Background())).To(HaveOccurred())

	m.Stop()
	m.Stop()

	g.Expect(m.Start(context.Background())).To(Succeed())
	m.Stop()
}
