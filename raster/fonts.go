package raster

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontProvider resolves the overlay font from an ordered list of sources:
// a bundled font file, then a remote URL, then the embedded Go Regular.
// Overlay text can be in scripts the template's embedded fonts do not
// cover (e.g. Gujarati), so deployments bundle or fetch a Noto-style TTF;
// the embedded fallback keeps rendering alive when neither is available.
type FontProvider struct {
	LocalPath    string        // bundled TTF/OTF path. empty = skip
	RemoteURL    string        // fallback download URL. empty = skip
	Client       *http.Client  // for the remote source. nil = http.DefaultClient
	FetchTimeout time.Duration // per-source timeout for the remote fetch
}

const defaultFetchTimeout = 15 * time.Second

// Load parses the first available font source.
// Remote fetch is best-effort: network absence degrades to the embedded
// default instead of failing the rasterizer.
func (p *FontProvider) Load(ctx context.Context) (*opentype.Font, error) {
	if p.LocalPath != "" {
		data, err := os.ReadFile(p.LocalPath)
		if err == nil {
			fnt, parseErr := opentype.Parse(data)
			if parseErr == nil {
				log.Printf("[INFO][Raster] font loaded from %s", p.LocalPath)
				return fnt, nil
			}
			log.Printf("[ERROR][Raster] bundled font %s unparsable: %v", p.LocalPath, parseErr)
		} else {
			log.Printf("[INFO][Raster] bundled font %s unavailable: %v", p.LocalPath, err)
		}
	}

	if p.RemoteURL != "" {
		data, err := p.fetchRemote(ctx)
		if err == nil {
			fnt, parseErr := opentype.Parse(data)
			if parseErr == nil {
				log.Printf("[INFO][Raster] font fetched from %s", p.RemoteURL)
				if p.LocalPath != "" {
					p.cacheLocal(data)
				}
				return fnt, nil
			}
			log.Printf("[ERROR][Raster] remote font unparsable: %v", parseErr)
		} else {
			log.Printf("[ERROR][Raster] remote font fetch failed: %v", err)
		}
	}

	log.Println("[INFO][Raster] using embedded default font")
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return fnt, nil
}

func (p *FontProvider) fetchRemote(ctx context.Context) ([]byte, error) {
	timeout := p.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, p.RemoteURL, nil)
	if err != nil {
		return nil, err
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			log.Printf("[ERROR] %v", closeErr)
		}
	}()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	return io.ReadAll(res.Body)
}

// cacheLocal saves a fetched font next time's LocalPath. Failure only logs;
// the font is already in memory.
func (p *FontProvider) cacheLocal(data []byte) {
	if err := os.WriteFile(p.LocalPath, data, 0o644); err != nil {
		log.Printf("[ERROR][Raster] caching fetched font to %s: %v", p.LocalPath, err)
	}
}
