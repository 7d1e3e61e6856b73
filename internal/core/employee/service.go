package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	ListEmployees(ctx context.Context) ([]string, error)
	AddEmployee(ctx context.Context, in AddEmployeeInput) (*Employee, error)
}

// Service は従業員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	newID func() string
}

// NewService は Service を生成します。clock が nil なら UTC の現在時刻を使います。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock, newID: uuid.NewString}
}

// AddEmployeeInput は従業員追加時の入力です。
type AddEmployeeInput struct {
	Name string
}

// ListEmployees は登録済みの従業員名を返します。
func (s *Service) ListEmployees(ctx context.Context) ([]string, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(employees))
	for _, e := range employees {
		names = append(names, e.Name)
	}
	return names, nil
}

// AddEmployee は名前を正規化して従業員を登録します。
func (s *Service) AddEmployee(ctx context.Context, in AddEmployeeInput) (*Employee, error) {
	name, err := NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &Employee{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: s.clock.Now(),
	})
}

// SeedEmployees は未登録の名前だけを追加し、追加した件数を返します。
// 空の名前は読み飛ばします。
func (s *Service) SeedEmployees(ctx context.Context, names []string) (int, error) {
	added := 0
	for _, raw := range names {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		_, err := s.AddEmployee(ctx, AddEmployeeInput{Name: raw})
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrEmployeeAlreadyExists):
		default:
			return added, fmt.Errorf("seed %q: %w", raw, err)
		}
	}
	return added, nil
}

// NormalizeName は前後の空白を除き大文字化します。
func NormalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return strings.ToUpper(trimmed), nil
}
