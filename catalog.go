package main

import (
	"sync"
	"time"

	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
)

// emoteCatalog holds the merged emote sets. Readers take a snapshot under
// the lock; refreshes build off to the side and swap in whole so a reader
// never observes a half-merged catalog.
type emoteCatalog struct {
	mu   sync.Mutex
	sets []emoteSet
}

func (c *emoteCatalog) snapshot() []emoteSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]emoteSet, len(c.sets))
	copy(out, c.sets)
	return out
}

func (c *emoteCatalog) replace(sets []emoteSet) {
	c.mu.Lock()
	c.sets = sets
	c.mu.Unlock()
}

func (c *emoteCatalog) append(set emoteSet) {
	c.mu.Lock()
	c.sets = append(c.sets, set)
	c.mu.Unlock()
}

// remove drops every emote originating from the given set id.
func (c *emoteCatalog) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.sets[:0]
	for _, s := range c.sets {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.sets = kept
}

func (c *emoteCatalog) clear() {
	c.replace(nil)
}

const downloadFanout = 3

// downloadEmoteSets fetches every requested set page, plus the global set
// when asked, each independently: one bad id is logged and omitted and
// never aborts its siblings. Results keep the request order.
func downloadEmoteSets(ids []string, useGlobal bool) []emoteSet {
	want := make([]string, 0, len(ids)+1)
	want = append(want, ids...)
	if useGlobal {
		want = append(want, globalSetID)
	}

	start := time.Now()
	results := make([]*emoteSet, len(want))
	swg := sizedwaitgroup.New(downloadFanout)
	for i, id := range want {
		swg.Add()
		go func(i int, id string) {
			defer swg.Done()
			set, err := fetchEmoteSet(id)
			if err != nil {
				logError("failed to download emote set %v: %v", id, err)
				return
			}
			results[i] = set
		}(i, id)
	}
	swg.Wait()

	sets := make([]emoteSet, 0, len(results))
	for _, set := range results {
		if set != nil {
			sets = append(sets, *set)
		}
	}
	logDebug("downloaded %d/%d emote sets in %v", len(sets), len(want),
		durafmt.Parse(time.Since(start)).LimitFirstN(2))
	return sets
}

// refreshCatalog runs on the worker: fetch everything, then swap the
// shared catalog in one motion.
func refreshCatalog(c *emoteCatalog, ids []string, useGlobal bool) {
	c.replace(downloadEmoteSets(ids, useGlobal))
}

// addEmoteSet fetches one page and appends it without touching the rest.
func addEmoteSet(c *emoteCatalog, id string) {
	set, err := fetchEmoteSet(id)
	if err != nil {
		logError("failed to download emote set %v: %v", id, err)
		return
	}
	c.append(*set)
}
