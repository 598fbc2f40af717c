package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/secureguard-backend/pkg/enums"
)

// Resolver probes the credential stores in ResolutionOrder and returns the first hit.
type Resolver struct {
	strategies []Strategy
}

// NewResolver orders strategies by ResolutionOrder. Exactly one strategy per role is required.
func NewResolver(strategies ...Strategy) (*Resolver, error) {
	byRole := make(map[enums.Role]Strategy, len(strategies))
	for _, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("nil identity strategy")
		}
		if _, dup := byRole[s.Role()]; dup {
			return nil, fmt.Errorf("duplicate identity strategy for role %s", s.Role())
		}
		byRole[s.Role()] = s
	}

	order := ResolutionOrder()
	ordered := make([]Strategy, 0, len(order))
	for _, role := range order {
		s, ok := byRole[role]
		if !ok {
			return nil, fmt.Errorf("missing identity strategy for role %s", role)
		}
		ordered = append(ordered, s)
	}
	if len(byRole) != len(ordered) {
		return nil, fmt.Errorf("unexpected identity strategy roles")
	}
	return &Resolver{strategies: ordered}, nil
}

// Resolve maps a token subject id to an identity.
func (r *Resolver) Resolve(ctx context.Context, subjectID int64) (Identity, error) {
	for _, s := range r.strategies {
		acct, err := s.FindByID(ctx, subjectID)
		if errors.Is(err, ErrIdentityNotFound) {
			continue
		}
		if err != nil {
			return Identity{}, err
		}
		return acct.Identity, nil
	}
	return Identity{}, ErrIdentityNotFound
}

// LocateByEmail finds the account owning email using the same store priority.
func (r *Resolver) LocateByEmail(ctx context.Context, email string) (*Account, error) {
	for _, s := range r.strategies {
		acct, err := s.FindByEmail(ctx, email)
		if errors.Is(err, ErrIdentityNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return acct, nil
	}
	return nil, ErrIdentityNotFound
}

// Account loads a specific store's account, bypassing the priority probe.
func (r *Resolver) Account(ctx context.Context, role enums.Role, id int64) (*Account, error) {
	for _, s := range r.strategies {
		if s.Role() == role {
			return s.FindByID(ctx, id)
		}
	}
	return nil, ErrIdentityNotFound
}
