package search

import (
	"fmt"

	"github.com/simeksgol/GoL-destroy/internal/ir"
)

// selectPool moves the cheapest unfiltered candidates, at most MaxPoolSize of
// them, into the filtered pool.
//
// Buckets are walked in cost order until the running total exceeds the pool
// size. Everything cheaper than that bucket is kept, and just enough of the
// bucket itself is sampled to fill the pool. If the total never exceeds the
// pool size, the cutoff is the cost ceiling and everything is kept.
func (d *Driver) selectPool(stats *RoundStats) error {
	clear(d.histogram)
	it := d.unfiltered.Iter()
	for rec, ok := it.Next(); ok; rec, ok = it.Next() {
		c, err := ir.RecordCost(rec)
		if err != nil {
			return fmt.Errorf("selectPool: %w", err)
		}
		d.histogram[c]++
	}

	maxPool := int64(d.params.MaxPoolSize)
	var oldSize, newSize int64
	cutoff := 0
	for ; cutoff < len(d.histogram); cutoff++ {
		if n := d.histogram[cutoff]; n != 0 && len(stats.Buckets) < d.params.HistogramBuckets {
			if len(stats.Buckets) == 0 {
				stats.LowestCost = cutoff
			}
			stats.Buckets = append(stats.Buckets, Bucket{Cost: cutoff, Count: n})
			d.logger.Info("candidates by cost", "cost", cutoff, "count", n)
		}
		oldSize = newSize
		newSize += d.histogram[cutoff]
		if newSize > maxPool {
			break
		}
	}
	stats.Cutoff = cutoff

	d.filtered.Clear()
	if err := d.filter(cutoff, newSize-oldSize, maxPool-oldSize); err != nil {
		return err
	}
	stats.Kept = d.filtered.Len()
	d.logger.Info("pool selected",
		"objects", stats.Objects,
		"lowest_cost", stats.LowestCost,
		"cutoff", stats.Cutoff,
		"kept", stats.Kept)
	return nil
}

// filter copies candidates below cutoff into the filtered pool, and keeps
// each candidate at cutoff with probability use/remaining.
func (d *Driver) filter(cutoff int, remaining, use int64) error {
	it := d.unfiltered.Iter()
	for rec, ok := it.Next(); ok; rec, ok = it.Next() {
		c, err := ir.RecordCost(rec)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		if c > cutoff {
			continue
		}
		if c == cutoff {
			keep := d.rng.Float64() < float64(use)/float64(remaining)
			remaining--
			if !keep {
				continue
			}
			use--
		}
		if err := d.filtered.Store(rec); err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}
	return nil
}

// reportLowest hands the cheapest filtered candidate to the reporter.
func (d *Driver) reportLowest(objects int) error {
	minCost := -1
	it := d.filtered.Iter()
	for rec, ok := it.Next(); ok; rec, ok = it.Next() {
		c, err := ir.RecordCost(rec)
		if err != nil {
			return fmt.Errorf("reportLowest: %w", err)
		}
		if minCost < 0 || c < minCost {
			minCost = c
		}
	}
	if minCost < 0 {
		return nil
	}

	it = d.filtered.Iter()
	for rec, ok := it.Next(); ok; rec, ok = it.Next() {
		if c, _ := ir.RecordCost(rec); c != minCost {
			continue
		}
		var cand ir.Candidate
		if err := ir.DecodeRecord(rec, &cand); err != nil {
			return fmt.Errorf("reportLowest: %w", err)
		}
		d.g.showObjects.Clear()
		d.cat.PlaceAll(d.g.showObjects, cand.Placements)
		d.g.showPattern.CopyFrom(d.task.Problem)
		d.g.showPattern.Or(d.g.showObjects)
		d.logger.Info("lowest cost intermediate", "objects", objects, "cost", minCost)
		d.reporter.Intermediate(objects, cand, d.g.showPattern, d.g.showObjects)
		return nil
	}
	return nil
}
