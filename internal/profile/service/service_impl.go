package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/printhaus/portal/internal/auth/domain"
	"github.com/printhaus/portal/internal/config"
	"github.com/printhaus/portal/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Users  authdomain.Repository
	Holder *config.PortalConfigHolder
}

type Service struct {
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	users  authdomain.Repository
	holder *config.PortalConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		log:    p.Log.Named("profile.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		users:  p.Users,
		holder: p.Holder,
	}
}

func (s *Service) Resolve(ctx context.Context, userID snowflake.ID) (*domain.Profile, error) {
	if userID == 0 {
		return nil, domain.ErrNoSession
	}

	ctx, cancel := context.WithTimeout(ctx, s.holder.Get().ProfileLookupTimeout)
	defer cancel()

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, mapTimeout(ctx, err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, mapTimeout(ctx, err)
	}

	now := time.Now().UTC()
	profile = &domain.Profile{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		Name:      displayName(user),
		Email:     user.Email,
		Tags:      datatypes.JSON([]byte("[]")),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, profile); err != nil {
		// A concurrent resolve may have created it first.
		if existing, findErr := s.repo.FindByUserID(ctx, userID); findErr == nil {
			return existing, nil
		}
		return nil, mapTimeout(ctx, err)
	}

	s.log.Info("profile created",
		zap.String("user_id", user.ID.String()),
		zap.String("profile_id", profile.ID.String()),
	)
	return profile, nil
}

func (s *Service) Update(ctx context.Context, userID snowflake.ID, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	if userID == 0 {
		return nil, domain.ErrNoSession
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalid
		}
		fields["name"] = name
	}
	if req.Email != nil {
		address := strings.TrimSpace(*req.Email)
		if address == "" || !strings.Contains(address, "@") {
			return nil, domain.ErrInvalid
		}
		fields["email"] = strings.ToLower(address)
	}
	if req.Company != nil {
		fields["company"] = strings.TrimSpace(*req.Company)
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByUserID(ctx, userID)
}

func displayName(user *authdomain.User) string {
	if name := strings.TrimSpace(user.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(user.Email, "@"); at > 0 {
		return user.Email[:at]
	}
	return "Customer"
}

func mapTimeout(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	return err
}
