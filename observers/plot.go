package observers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"

	"github.com/sensoriumtl/trellis"
)

const (
	plotWriteWait  = 1 * time.Second
	plotPingPeriod = 2 * time.Second
	plotPongWait   = 4 * plotPingPeriod
)

var plotUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// PlotPoint is one sample published to connected plot clients.
type PlotPoint struct {
	Calculation string  `json:"calculation"`
	Stage       string  `json:"stage"`
	Iter        uint64  `json:"iter"`
	Error       float64 `json:"error"`
	BestError   float64 `json:"best_error"`
}

// Plot is a live-streaming websocket Observer, grounded on a fastview-style
// publisher: incoming points are pushed into a best-effort buffered channel
// per connected client, and any client too slow to keep up simply misses
// intervening points rather than blocking the calculation loop.
type Plot[F constraints.Float, Param any, S trellis.UserState[F, Param]] struct {
	mu      sync.Mutex
	clients map[chan PlotPoint]struct{}
}

// NewPlot constructs an empty Plot observer. Serve it over HTTP at a
// websocket endpoint by passing Plot.ServeHTTP to an *http.ServeMux.
func NewPlot[F constraints.Float, Param any, S trellis.UserState[F, Param]]() *Plot[F, Param, S] {
	return &Plot[F, Param, S]{clients: make(map[chan PlotPoint]struct{})}
}

// ServeHTTP upgrades the request to a websocket and streams points to it
// until the client disconnects or the server shuts the connection down.
func (p *Plot[F, Param, S]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := plotUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	ch := make(chan PlotPoint, 16)
	p.addClient(ch)
	defer p.removeClient(ch)

	group, ctx := errgroup.WithContext(r.Context())

	group.Go(func() error { return p.publish(ctx, conn, ch) })
	group.Go(func() error { return p.pingPong(ctx, conn) })
	group.Go(func() error { return p.readLoop(conn) })

	_ = group.Wait()
	_ = conn.Close()
}

func (p *Plot[F, Param, S]) addClient(ch chan PlotPoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[ch] = struct{}{}
}

func (p *Plot[F, Param, S]) removeClient(ch chan PlotPoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, ch)
	close(ch)
}

func (p *Plot[F, Param, S]) publish(ctx context.Context, conn *websocket.Conn, ch chan PlotPoint) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case point, ok := <-ch:
			if !ok {
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(plotWriteWait))
			b, err := json.Marshal(point)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return err
			}
		}
	}
}

func (p *Plot[F, Param, S]) pingPong(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(plotPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(plotPongWait))
		return nil
	})

	ticker := time.NewTicker(plotPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(plotWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (p *Plot[F, Param, S]) readLoop(conn *websocket.Conn) error {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
	}
}

// Observe pushes a point to every connected client's buffered channel,
// discarding the point for any client whose buffer is already full
// instead of blocking the calculation loop.
func (p *Plot[F, Param, S]) Observe(name string, state *trellis.State[F, Param, S], stage trellis.Stage) {
	point := PlotPoint{
		Calculation: name,
		Stage:       stage.String(),
		Iter:        state.Iter(),
		Error:       float64(state.Error()),
		BestError:   float64(state.BestError()),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.clients {
		select {
		case ch <- point:
		default:
		}
	}
}
