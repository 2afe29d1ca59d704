package timing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/testingx"
)

func ptr(v uint64) *uint64 {
	return &v
}

func TestTracker(t *testing.T) {
	t.Run("with every phase", func(t *testing.T) {
		// each call to Now advances the clock by 10ms
		clock := testingx.NewTimeDeterministicWithStep(
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10*time.Millisecond)
		tracker := NewTracker(clock.Now) // t=0
		tracker.StartDNS()               // t=10
		tracker.EndDNS()                 // t=20
		tracker.StartTCP()               // t=30
		tracker.EndTCP()                 // t=40
		tracker.StartTLS()               // t=50
		tracker.EndTLS()                 // t=60
		tracker.StartRequest()           // t=70
		tracker.MarkTTFB()               // t=80
		tracker.StartDownload()          // t=90
		tracker.EndDownload()            // t=100
		expect := model.TimingInfo{
			Total:    100,
			DNS:      ptr(10),
			TCP:      ptr(10),
			TLS:      ptr(10),
			TTFB:     ptr(10),
			Download: ptr(10),
			Blocked:  ptr(0),
		}
		if diff := cmp.Diff(expect, tracker.Info()); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("with incomplete phases", func(t *testing.T) {
		clock := testingx.NewTimeDeterministicWithStep(
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10*time.Millisecond)
		tracker := NewTracker(clock.Now) // t=0
		tracker.StartDNS()               // t=10
		tracker.EndDNS()                 // t=20
		tracker.StartTCP()               // t=30
		// Info calls Now for the total at t=40
		expect := model.TimingInfo{
			Total:   40,
			DNS:     ptr(10),
			Blocked: ptr(0),
		}
		if diff := cmp.Diff(expect, tracker.Info()); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("later marks replace earlier ones", func(t *testing.T) {
		clock := testingx.NewTimeDeterministicWithStep(
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10*time.Millisecond)
		tracker := NewTracker(clock.Now) // t=0
		tracker.StartDownload()          // t=10
		tracker.EndDownload()            // t=20
		tracker.StartDownload()          // t=30
		tracker.EndDownload()            // t=40
		info := tracker.Info()
		if info.Total != 40 {
			t.Fatal("unexpected total", info.Total)
		}
		if info.Download == nil || *info.Download != 10 {
			t.Fatal("unexpected download", info.Download)
		}
	})

	t.Run("defaults to the system clock", func(t *testing.T) {
		tracker := NewTracker(nil)
		if tracker.now == nil {
			t.Fatal("expected non-nil clock")
		}
		info := tracker.Info()
		if info.Blocked == nil || *info.Blocked != 0 {
			t.Fatal("unexpected blocked")
		}
	})
}
