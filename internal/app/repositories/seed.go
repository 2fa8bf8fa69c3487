package repositories

import (
	"context"
	"fmt"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// SeedCommunities copies every community found in src into dst, overwriting
// existing entries with the same name.
func SeedCommunities(ctx context.Context, src, dst CommunityRepository, log waLog.Logger) (int, error) {
	names, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list seed communities: %w", err)
	}
	seeded := 0
	for _, name := range names {
		c, err := src.Get(ctx, name)
		if err != nil {
			if log != nil {
				log.Warnf("seed: skipping %s: %v", name, err)
			}
			continue
		}
		if err := dst.Save(ctx, c); err != nil {
			return seeded, fmt.Errorf("seed %s: %w", name, err)
		}
		seeded++
	}
	if log != nil {
		log.Infof("seeded %d community roster(s)", seeded)
	}
	return seeded, nil
}
