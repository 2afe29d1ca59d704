// Package timing tracks the phases of executing an HTTP request.
package timing

import (
	"time"

	"github.com/wirescope/wirescope/internal/model"
)

// phase is a time interval that may not be complete yet.
type phase struct {
	start, end       time.Time
	hasStart, hasEnd bool
}

func (p *phase) markStart(t time.Time) {
	p.start, p.hasStart = t, true
}

func (p *phase) markEnd(t time.Time) {
	p.end, p.hasEnd = t, true
}

// millis returns the phase duration in milliseconds or nil when the
// phase has not been both started and ended.
func (p *phase) millis() *uint64 {
	if !p.hasStart || !p.hasEnd {
		return nil
	}
	v := durationMillis(p.end.Sub(p.start))
	return &v
}

func durationMillis(d time.Duration) uint64 {
	if d < 0 {
		return 0
	}
	return uint64(d.Milliseconds())
}

// Tracker records when each phase of a request starts and ends. The
// zero value is not valid: use NewTracker.
//
// A Tracker is not safe for concurrent use: the executor that owns
// it runs on a single goroutine.
type Tracker struct {
	dns      phase
	download phase
	now      func() time.Time
	request  phase
	start    time.Time
	tcp      phase
	tls      phase
}

// NewTracker creates a new Tracker whose overall start is now. The now
// argument is OPTIONAL and defaults to time.Now.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now, start: now()}
}

// StartDNS marks the beginning of the DNS lookup.
func (t *Tracker) StartDNS() { t.dns.markStart(t.now()) }

// EndDNS marks the end of the DNS lookup.
func (t *Tracker) EndDNS() { t.dns.markEnd(t.now()) }

// StartTCP marks the beginning of the TCP connect.
func (t *Tracker) StartTCP() { t.tcp.markStart(t.now()) }

// EndTCP marks the end of the TCP connect.
func (t *Tracker) EndTCP() { t.tcp.markEnd(t.now()) }

// StartTLS marks the beginning of the TLS handshake.
func (t *Tracker) StartTLS() { t.tls.markStart(t.now()) }

// EndTLS marks the end of the TLS handshake.
func (t *Tracker) EndTLS() { t.tls.markEnd(t.now()) }

// StartRequest marks when we start sending the request.
func (t *Tracker) StartRequest() { t.request.markStart(t.now()) }

// MarkTTFB marks when we have parsed the response headers.
func (t *Tracker) MarkTTFB() { t.request.markEnd(t.now()) }

// StartDownload marks the beginning of reading the body.
func (t *Tracker) StartDownload() { t.download.markStart(t.now()) }

// EndDownload marks the end of reading the body.
func (t *Tracker) EndDownload() { t.download.markEnd(t.now()) }

// Info converts the recorded phases to milliseconds. The total runs from
// the tracker creation to the end of the download or, when the download
// has not ended, to now. Blocked is always zero.
func (t *Tracker) Info() model.TimingInfo {
	end := t.download.end
	if !t.download.hasEnd {
		end = t.now()
	}
	blocked := uint64(0)
	return model.TimingInfo{
		Total:    durationMillis(end.Sub(t.start)),
		DNS:      t.dns.millis(),
		TCP:      t.tcp.millis(),
		TLS:      t.tls.millis(),
		TTFB:     t.request.millis(),
		Download: t.download.millis(),
		Blocked:  &blocked,
	}
}
