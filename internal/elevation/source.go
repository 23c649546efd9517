package elevation

import (
	"context"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/samschaack/terrastream/internal/geo"
)

// Source produces decoded elevation grids for tiles. Implementations are
// safe for concurrent use.
type Source interface {
	// FetchTile fetches and decodes one tile. Errors are contained by the
	// cache, which substitutes a zero grid; sources just report them.
	FetchTile(ctx context.Context, id geo.TileID) (*Grid, error)

	// GridSize returns the sample resolution of grids this source produces,
	// used to size the zero-grid fallback.
	GridSize() int
}

// HTTPSource fetches terrain-RGB PNG tiles from an HTTP(S) tile endpoint
// keyed by zoom/x/y and an access credential.
type HTTPSource struct {
	endpoint string
	apiKey   string
	tileSize int
	client   *http.Client
}

// NewHTTPSource builds a source against a tile endpoint. The endpoint is
// the URL prefix before the /z/x/y.png path.
func NewHTTPSource(endpoint, apiKey string) (*HTTPSource, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("elevation: empty tile endpoint")
	}
	return &HTTPSource{
		endpoint: endpoint,
		apiKey:   apiKey,
		tileSize: 256,
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// FetchTile performs the HTTP GET and decodes the PNG payload.
func (s *HTTPSource) FetchTile(ctx context.Context, id geo.TileID) (*Grid, error) {
	url := fmt.Sprintf("%s/%d/%d/%d.png", s.endpoint, id.Zoom, id.X, id.Y)
	if s.apiKey != "" {
		url += "?key=" + s.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("elevation: building request for %s: %w", id, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevation: fetching %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevation: fetching %s: http %d", id, resp.StatusCode)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevation: decoding %s: %w", id, err)
	}
	return DecodeImage(img, id)
}

// GridSize returns the provider's raster resolution.
func (s *HTTPSource) GridSize() int { return s.tileSize }

// NoiseSource synthesizes elevation from fractal perlin noise. It needs no
// endpoint or credential and is deterministic per seed, so it serves offline
// runs and tests. Samples are taken in pyramid-global coordinates, so
// neighboring tiles and different zoom levels agree on the same terrain.
type NoiseSource struct {
	noise     *perlin.Perlin
	size      int
	frequency float64
	amplitude float64
	seaLevel  float64
}

// NewNoiseSource builds a synthetic source. Size is the grid resolution of
// produced tiles.
func NewNoiseSource(seed int64, size int) (*NoiseSource, error) {
	if size < 2 {
		return nil, fmt.Errorf("elevation: noise grid size %d too small", size)
	}
	return &NoiseSource{
		noise:     perlin.NewPerlin(2, 2, 3, seed),
		size:      size,
		frequency: 96,
		amplitude: 2600,
		seaLevel:  -200,
	}, nil
}

// FetchTile synthesizes one tile.
func (s *NoiseSource) FetchTile(_ context.Context, id geo.TileID) (*Grid, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("elevation: invalid tile %s", id)
	}
	n := float64(int(1) << id.Zoom)
	samples := make([]float32, s.size*s.size)
	i := 0
	for y := 0; y < s.size; y++ {
		v := float64(y) / float64(s.size-1)
		gy := (float64(id.Y) + v) / n
		for x := 0; x < s.size; x++ {
			u := float64(x) / float64(s.size-1)
			gx := (float64(id.X) + u) / n
			h := s.noise.Noise2D(gx*s.frequency, gy*s.frequency)*s.amplitude + s.seaLevel
			samples[i] = float32(h)
			i++
		}
	}
	return NewGrid(id, s.size, samples)
}

// GridSize returns the synthetic grid resolution.
func (s *NoiseSource) GridSize() int { return s.size }
