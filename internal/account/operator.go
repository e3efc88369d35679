// AngelaMos | 2026
// operator.go

package account

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/roadassist-api/internal/auth"
	"github.com/carterperez-dev/roadassist-api/internal/core"
)

var _ auth.OperatorProvider = (*Service)(nil)

// GetOperatorByEmail resolves a dashboard operator for login. Only admin
// accounts can authenticate; any other account type behind the email is
// reported as not found so login cannot leak its existence.
func (s *Service) GetOperatorByEmail(
	ctx context.Context,
	email string,
) (*auth.OperatorInfo, error) {
	acct, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return operatorInfo(acct)
}

func (s *Service) GetOperatorByID(
	ctx context.Context,
	id string,
) (*auth.OperatorInfo, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return operatorInfo(acct)
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	accountID string,
) error {
	if err := s.repo.IncrementTokenVersion(ctx, accountID); err != nil {
		return err
	}

	if acct, ok := s.store.Get(accountID); ok {
		acct.TokenVersion++
		s.store.Replace(acct)
	}

	return nil
}

func (s *Service) UpdatePasswordHash(
	ctx context.Context,
	accountID, passwordHash string,
) error {
	if err := s.repo.UpdatePassword(ctx, accountID, passwordHash); err != nil {
		return err
	}

	if acct, ok := s.store.Get(accountID); ok {
		acct.PasswordHash = passwordHash
		s.store.Replace(acct)
	}

	return nil
}

func operatorInfo(acct *Account) (*auth.OperatorInfo, error) {
	if acct.Type != TypeAdmin || acct.Admin == nil {
		return nil, fmt.Errorf("operator lookup: %w", core.ErrNotFound)
	}

	return &auth.OperatorInfo{
		ID:           acct.ID,
		Email:        acct.Email,
		Name:         acct.Name,
		PasswordHash: acct.PasswordHash,
		Role:         acct.Admin.Role,
		Permissions:  append([]string(nil), acct.Admin.Permissions...),
		TokenVersion: acct.TokenVersion,
	}, nil
}
