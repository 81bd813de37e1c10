// Command stegosub replays rectified camera frame dumps through the decode
// pipeline and serves the results over the JSON API.
//
// Frame dumps are raw RGBA files (one frame per file, row-major, 4 bytes
// per pixel) read in lexical order from the dump directory. Frames are
// assumed already frontal; marker detection on live camera input sits in
// front of this binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/overlaylab/stegosub/internal/api"
	"github.com/overlaylab/stegosub/internal/decoder"
	"github.com/overlaylab/stegosub/internal/frame"
	"github.com/overlaylab/stegosub/internal/geometry"
	"github.com/overlaylab/stegosub/internal/marker"
	"github.com/overlaylab/stegosub/internal/monitoring"
	"github.com/overlaylab/stegosub/internal/perspective"
	"github.com/overlaylab/stegosub/internal/session"
)

var (
	listen      = flag.String("listen", ":8080", "Listen address")
	dumpDir     = flag.String("dump", "", "Directory of raw RGBA frame dumps to replay")
	frameWidth  = flag.Int("width", 1280, "Dump frame width in pixels")
	frameHeight = flag.Int("height", 720, "Dump frame height in pixels")
	interval    = flag.Duration("interval", 100*time.Millisecond, "Delay between replayed frames")
	sessionDB   = flag.String("session-db", "", "Record decode outcomes to this sqlite file")
	debugLog    = flag.Bool("debug", false, "Enable per-frame debug logging")
)

// frontalVision treats every frame as already rectified: the markers sit at
// their canonical embedding positions and the transform is identity.
type frontalVision struct{}

func (frontalVision) DetectCandidateCorners(f *frame.RGBA) []*marker.OrderedCorners {
	pos := decoder.CanonicalMarkerPositions(f.Width, f.Height)
	mk := func(p geometry.Point, role marker.Corner) *marker.CornerPoint {
		return &marker.CornerPoint{Point: p, Strength: 1, Corner: role}
	}
	return []*marker.OrderedCorners{{
		TopLeft:     mk(pos[0], marker.TopLeft),
		TopRight:    mk(pos[1], marker.TopRight),
		BottomRight: mk(pos[2], marker.BottomRight),
		BottomLeft:  mk(pos[3], marker.BottomLeft),
	}}
}

func (frontalVision) EstimateTransform(src, dst [4]geometry.Point) (*perspective.Transform, error) {
	return perspective.New([9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}), nil
}

func loadFrame(path string, width, height int) (*frame.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	want := width * height * frame.BytesPerPixel
	if len(data) != want {
		return nil, fmt.Errorf("frame %s is %d bytes, want %d for %dx%d", path, len(data), want, width, height)
	}
	return &frame.RGBA{Width: width, Height: height, Pix: data}, nil
}

func replayFrames(ctx context.Context, d *decoder.Decoder, dir string, width, height int, delay time.Duration) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dump directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no frame dumps in %s", dir)
	}
	log.Printf("replaying %d frames from %s", len(paths), dir)

	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for _, path := range paths {
		f, err := loadFrame(path, width, height)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		res := d.DetectAndDecode(f)
		if res.Success {
			log.Printf("frame %d @%dms: %q (%.2fms)",
				res.FrameNumber, res.TimestampMs, res.Subtitle.Text, res.DecodeTimeMs)
		} else {
			monitoring.Debugf("%s: decode failed at %s: %s", path, res.Kind, res.Error)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func main() {
	flag.Parse()
	monitoring.Debug = *debugLog

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	var rec *session.Recorder
	if *sessionDB != "" {
		var err error
		rec, err = session.Open(*sessionDB, fmt.Sprintf("replay of %s", *dumpDir))
		if err != nil {
			log.Fatalf("failed to open session database: %v", err)
		}
		defer rec.Close()
	}

	d := decoder.New(frontalVision{}, decoder.Config{Observer: rec})
	if err := d.Ready(); err != nil {
		log.Fatalf("decoder not ready: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dumpDir != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := replayFrames(ctx, d, *dumpDir, *frameWidth, *frameHeight, *interval); err != nil && err != context.Canceled {
				log.Printf("replay stopped: %v", err)
			}
			log.Print("replay routine terminated")
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := api.NewServer(d, rec).ServeMux()
		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()
}
