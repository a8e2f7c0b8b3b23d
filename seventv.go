package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

// seventvAPIBase is a var so tests can point it at a local server.
var seventvAPIBase = "https://7tv.io/v3/emote-sets"

const globalSetID = "global"

// zero-width emotes render as an overlay on the previous emote instead of
// their own sprite; 7tv signals this with a flag bit on the set entry.
const emoteFlagZeroWidth = 1 << 8

type fileFormat string

const (
	formatAVIF    fileFormat = "AVIF"
	formatWEBP    fileFormat = "WEBP"
	formatGIF     fileFormat = "GIF"
	formatPNG     fileFormat = "PNG"
	formatUnknown fileFormat = "UNKNOWN"
)

func (f *fileFormat) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch fileFormat(s) {
	case formatAVIF, formatWEBP, formatGIF, formatPNG:
		*f = fileFormat(s)
	default:
		*f = formatUnknown
	}
	return nil
}

type emoteFile struct {
	Name       string     `json:"name"`
	StaticName string     `json:"static_name"`
	Width      uint32     `json:"width"`
	Height     uint32     `json:"height"`
	FrameCount uint32     `json:"frame_count"`
	Size       uint32     `json:"size"`
	Format     fileFormat `json:"format"`
}

type emoteHost struct {
	URL   string      `json:"url"`
	Files []emoteFile `json:"files"`
}

type emoteData struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Animated bool      `json:"animated"`
	Host     emoteHost `json:"host"`
}

type emote struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Flags uint32    `json:"flags"`
	Data  emoteData `json:"data"`
}

func (e *emote) zeroWidth() bool {
	return e.Flags&emoteFlagZeroWidth != 0
}

type emoteSet struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Emotes []emote `json:"emotes"`
}

// preferredFile picks the image file to load for an emote: the first one
// at the fixed "3x" resolution in one of the two raster formats we can
// decode straight to frames.
func preferredFile(files []emoteFile) *emoteFile {
	for i := range files {
		f := &files[i]
		if (f.Format == formatGIF || f.Format == formatPNG) && strings.HasPrefix(f.StaticName, "3x") {
			return f
		}
	}
	return nil
}

// fileURL joins the emote host block with a chosen file name. Host URLs
// arrive scheme-relative ("//cdn.7tv.app/...").
func fileURL(host *emoteHost, file *emoteFile) (string, error) {
	base, err := url.Parse("https:" + host.URL + "/")
	if err != nil {
		return "", fmt.Errorf("parse host url %q: %w", host.URL, err)
	}
	ref, err := url.Parse(file.Name)
	if err != nil {
		return "", fmt.Errorf("parse file name %q: %w", file.Name, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// fetchLimiter keeps CDN and API requests polite; every fetch on the
// worker waits its turn here.
var fetchLimiter = rate.NewLimiter(rate.Limit(4), 4)

// fetchEmoteSet downloads and parses one emote-set page by id.
func fetchEmoteSet(id string) (*emoteSet, error) {
	if err := fetchLimiter.Wait(context.Background()); err != nil {
		return nil, err
	}
	u := seventvAPIBase + "/" + url.PathEscape(id)
	resp, err := http.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %v: %v", u, resp.Status)
	}
	var set emoteSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parse emote set %v: %w", id, err)
	}
	return &set, nil
}

// fetchBytes downloads an emote image, logging size and duration.
func fetchBytes(u string) ([]byte, error) {
	if err := fetchLimiter.Wait(context.Background()); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := http.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %v: %v", u, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logDebug("fetched %v (%s in %v)", u, humanize.Bytes(uint64(len(data))), time.Since(start).Round(time.Millisecond))
	return data, nil
}
