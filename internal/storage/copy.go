package storage

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/docstore"
)

// CopyStats counts the documents copied per collection.
type CopyStats struct {
	Credentials int
	Users       int
	Habits      int
}

// Copy writes every credential, profile and habit document of src into dst.
// Existing documents at the same paths are replaced.
func Copy(ctx context.Context, dst, src docstore.Store) (CopyStats, error) {
	var stats CopyStats

	n, err := copyChildren(ctx, dst, src, constants.CredentialsCollection)
	if err != nil {
		return stats, err
	}
	stats.Credentials = n

	users, err := src.Children(ctx, constants.UsersCollection)
	if err != nil {
		return stats, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		p, err := docstore.Join(constants.UsersCollection, u.Key)
		if err != nil {
			return stats, err
		}
		if err := dst.Set(ctx, p, u.Doc); err != nil {
			return stats, fmt.Errorf("failed to copy user %s: %w", u.Key, err)
		}
		stats.Users++

		habits, err := docstore.Join(constants.UsersCollection, u.Key, constants.HabitsCollection)
		if err != nil {
			return stats, err
		}
		n, err := copyChildren(ctx, dst, src, habits)
		if err != nil {
			return stats, err
		}
		stats.Habits += n
	}
	return stats, nil
}

func copyChildren(ctx context.Context, dst, src docstore.Store, parent docstore.Path) (int, error) {
	entries, err := src.Children(ctx, parent)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", parent, err)
	}
	for _, e := range entries {
		p, err := parent.Child(e.Key)
		if err != nil {
			return 0, err
		}
		if err := dst.Set(ctx, p, e.Doc); err != nil {
			return 0, fmt.Errorf("failed to copy %s: %w", p, err)
		}
	}
	return len(entries), nil
}
