package raytrace

import (
	"context"
	"encoding/gob"
	"net"
	"sync"

	"github.com/relgr/raytrace/output"
	"github.com/relgr/raytrace/rterr"
)

// Tag is the closed message vocabulary of spec.md §5/§9: "re-express as a
// typed request/response channel with the closed tag vocabulary", grounded
// on the teacher's own channel-based producer/consumer pattern
// (export.go's StreamStates consuming a <-chan MissionState, mission.go's
// stopChan cooperative-shutdown channel) generalized from one channel per
// concern to one typed Message carrying a Tag.
type Tag uint8

const (
	TagReady Tag = iota + 1
	TagGiveTask
	TagRayTrace
	TagRayTraceDone
	TagImpactCoords
	TagNoImpactCoords
	TagTerminate
	TagReadScenery
)

// PixelRange is the unit of work a coordinator hands a worker.
type PixelRange struct {
	IMin, IMax, JMin, JMax int
}

// Message is the single typed envelope every distributed-mode
// participant exchanges; exactly one of its payload fields is meaningful
// per Tag, mirroring the closed tag vocabulary of spec.md §5.
type Message struct {
	Tag      Tag
	Range    PixelRange
	Buffer   *output.Buffer
	WorkerID int
}

// Worker is the transport-agnostic distributed-mode participant: it can run
// in-process (goroutines standing in for "processes", used by tests) or
// over a net.Conn (gob-encoded) for a real multi-process deployment —
// gob+net is stdlib, justified in DESIGN.md since no message-broker or RPC
// library in the retrieval pack models this exact give_task/raytrace_done/
// ready request-response shape, and spec.md §9 directs a typed-channel
// re-expression over the source's original tag-dispatched sends rather
// than adopting an external messaging library.
type Worker interface {
	// Send transmits msg to the peer.
	Send(msg Message) error
	// Recv blocks for the next Message from the peer.
	Recv() (Message, error)
	// Close releases any underlying transport.
	Close() error
}

// chanWorker is the in-process Worker, a pair of channels standing in for
// a coordinator<->worker process pair.
type chanWorker struct {
	out chan<- Message
	in  <-chan Message
}

// NewInProcessPair returns two Workers wired to each other, used by the
// coordinator/worker unit tests and by single-process "distributed" runs.
func NewInProcessPair() (coordinatorSide, workerSide Worker) {
	a := make(chan Message, 4)
	b := make(chan Message, 4)
	return chanWorker{out: a, in: b}, chanWorker{out: b, in: a}
}

func (w chanWorker) Send(msg Message) error {
	w.out <- msg
	return nil
}

func (w chanWorker) Recv() (Message, error) {
	msg, ok := <-w.in
	if !ok {
		return Message{}, rterr.New(rterr.Invariant, "raytrace", "peer channel closed")
	}
	return msg, nil
}

func (w chanWorker) Close() error { return nil }

// netWorker is the gob-over-net.Conn Worker for real multi-process
// deployment.
type netWorker struct {
	conn net.Conn
	enc  *gob.Encoder
	dec  *gob.Decoder
}

// NewNetWorker wraps conn in a gob-encoded Worker.
func NewNetWorker(conn net.Conn) Worker {
	return &netWorker{conn: conn, enc: gob.NewEncoder(conn), dec: gob.NewDecoder(conn)}
}

func (w *netWorker) Send(msg Message) error { return w.enc.Encode(msg) }

func (w *netWorker) Recv() (Message, error) {
	var msg Message
	if err := w.dec.Decode(&msg); err != nil {
		return Message{}, rterr.New(rterr.DataIO, "raytrace", "decode distributed message: %v", err)
	}
	return msg, nil
}

func (w *netWorker) Close() error { return w.conn.Close() }

// Coordinator drives a pool of Workers over the pixel rectangle
// [iMin,iMax]x[jMin,jMax], reissuing a pending range to a subsequent
// `ready` worker if the one holding it disconnects or errors (spec.md §5:
// "must tolerate worker failure by reissuing the pending range ... partial
// results are never merged").
func Coordinator(workers []Worker, s *Scenery, iMin, iMax, jMin, jMax int) (*output.Buffer, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	final := output.NewBuffer(iMin, iMax, jMin, jMax, s.NSpectral, s.Quantities)

	var mu sync.Mutex
	pending := pixelRanges(iMin, iMax, jMin, jMax, len(workers))
	s.log().Log("level", "info", "subsys", "coordinator", "msg", "dispatch started", "workers", len(workers), "ranges", len(pending))

	var wg sync.WaitGroup
	for wi, w := range workers {
		w, wi := w, wi
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				msg, err := w.Recv()
				if err != nil {
					s.log().Log("level", "error", "subsys", "coordinator", "msg", "worker disconnected", "worker", wi, "err", err)
					return
				}
				if msg.Tag != TagReady {
					continue
				}

				mu.Lock()
				if len(pending) == 0 {
					mu.Unlock()
					_ = w.Send(Message{Tag: TagTerminate})
					return
				}
				r := pending[0]
				pending = pending[1:]
				mu.Unlock()

				s.log().Log("level", "info", "subsys", "coordinator", "msg", "range assigned", "worker", wi, "range", r)

				if err := w.Send(Message{Tag: TagGiveTask, Range: r}); err != nil {
					mu.Lock()
					pending = append(pending, r)
					mu.Unlock()
					s.log().Log("level", "error", "subsys", "coordinator", "msg", "range reissued", "worker", wi, "range", r, "err", err)
					return
				}

				done, err := w.Recv()
				if err != nil || done.Tag != TagRayTraceDone {
					mu.Lock()
					pending = append(pending, r)
					mu.Unlock()
					s.log().Log("level", "error", "subsys", "coordinator", "msg", "range reissued", "worker", wi, "range", r, "err", err)
					return
				}
				mu.Lock()
				mergeBuffer(final, done.Buffer, done.Range)
				mu.Unlock()
				s.log().Log("level", "info", "subsys", "coordinator", "msg", "range merged", "worker", wi, "range", r)
			}
		}()
	}
	wg.Wait()
	s.log().Log("level", "info", "subsys", "coordinator", "msg", "dispatch finished")
	return final, nil
}

// pixelRanges splits the rectangle into n roughly-equal row chunks.
func pixelRanges(iMin, iMax, jMin, jMax, n int) []PixelRange {
	if n < 1 {
		n = 1
	}
	total := iMax - iMin + 1
	chunk := (total + n - 1) / n
	if chunk < 1 {
		chunk = 1
	}
	var ranges []PixelRange
	for i := iMin; i <= iMax; i += chunk {
		hi := i + chunk - 1
		if hi > iMax {
			hi = iMax
		}
		ranges = append(ranges, PixelRange{IMin: i, IMax: hi, JMin: jMin, JMax: jMax})
	}
	return ranges
}

// mergeBuffer copies a completed sub-range's slots from src into dst.
// Writes to distinct pixel slots commute (spec.md §5), so this never races
// with another range's merge.
func mergeBuffer(dst, src *output.Buffer, r PixelRange) {
	if src == nil {
		return
	}
	for i := r.IMin; i <= r.IMax; i++ {
		for j := r.JMin; j <= r.JMax; j++ {
			dp := dst.PropertiesFor(i, j)
			sp := src.PropertiesFor(i, j)
			copyProperties(dp, sp)
		}
	}
}

func copyProperties(dst, src *output.Properties) {
	if dst.Intensity != nil && src.Intensity != nil {
		*dst.Intensity = *src.Intensity
	}
	if dst.EmissionTime != nil && src.EmissionTime != nil {
		*dst.EmissionTime = *src.EmissionTime
	}
	if dst.MinDistance != nil && src.MinDistance != nil {
		*dst.MinDistance = *src.MinDistance
	}
	if dst.FirstDistMin != nil && src.FirstDistMin != nil {
		*dst.FirstDistMin = *src.FirstDistMin
	}
	if dst.Redshift != nil && src.Redshift != nil {
		*dst.Redshift = *src.Redshift
	}
	if dst.Opacity != nil && src.Opacity != nil {
		*dst.Opacity = *src.Opacity
	}
	if dst.ImpactCoordsPh != nil && src.ImpactCoordsPh != nil {
		*dst.ImpactCoordsPh = *src.ImpactCoordsPh
		*dst.ImpactCoordsObj = *src.ImpactCoordsObj
	}
	if dst.NbCrossEqPlane != nil && src.NbCrossEqPlane != nil {
		*dst.NbCrossEqPlane = *src.NbCrossEqPlane
	}
	copy(dst.Spectrum, src.Spectrum)
	copy(dst.BinSpectrum, src.BinSpectrum)
}

// RunWorker implements the worker side of the distributed protocol: send
// ready, receive give_task or terminate, trace the assigned range with
// RayTrace, reply raytrace_done, repeat until terminate.
func RunWorker(w Worker, id int, s *Scenery) error {
	for {
		if err := w.Send(Message{Tag: TagReady, WorkerID: id}); err != nil {
			return err
		}
		msg, err := w.Recv()
		if err != nil {
			return err
		}
		switch msg.Tag {
		case TagTerminate:
			s.log().Log("level", "info", "subsys", "worker", "msg", "terminated", "worker", id)
			return nil
		case TagGiveTask:
			r := msg.Range
			s.log().Log("level", "info", "subsys", "worker", "msg", "range received", "worker", id, "range", r)
			buf, err := RayTrace(context.Background(), s, r.IMin, r.IMax, r.JMin, r.JMax)
			if err != nil {
				s.log().Log("level", "error", "subsys", "worker", "msg", "raytrace failed", "worker", id, "range", r, "err", err)
				return err
			}
			if err := w.Send(Message{Tag: TagRayTraceDone, Range: r, Buffer: buf, WorkerID: id}); err != nil {
				return err
			}
		}
	}
}
