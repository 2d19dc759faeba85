// Package authority resolves whether a caller holds the super-admin role for the
// deployment or the artist role for a project. The two scopes never overlap: the
// super-admin is not implicitly an artist and an artist has no registry rights.
package authority

import (
	"context"
	"errors"

	"mintgate/internal/project/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
)

// ProjectLookup resolves a project's current record. The artist address is read
// from it on every check so artist reassignment on the ledger is seen immediately.
type ProjectLookup interface {
	FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error)
}

type Authority struct {
	superAdmin domain.Address
	projects   ProjectLookup
}

func New(superAdmin domain.Address, projects ProjectLookup) *Authority {
	return &Authority{superAdmin: superAdmin, projects: projects}
}

// SuperAdmin returns the deployment's super-admin address.
func (a *Authority) SuperAdmin() domain.Address {
	return a.superAdmin
}

// IsSuperAdmin reports whether addr is the deployment super-admin.
func (a *Authority) IsSuperAdmin(addr domain.Address) bool {
	return !addr.IsZero() && addr == a.superAdmin
}

// IsArtist reports whether addr is the artist of project id.
// An unknown project yields a not_found error.
func (a *Authority) IsArtist(ctx context.Context, id domain.ProjectID, addr domain.Address) (bool, error) {
	p, err := a.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}
	return p.IsArtist(addr), nil
}

// RequireSuperAdmin returns a not_super_admin error unless addr is the super-admin.
func (a *Authority) RequireSuperAdmin(addr domain.Address) error {
	if !a.IsSuperAdmin(addr) {
		return dErrors.New(dErrors.CodeNotSuperAdmin, "only the super-admin may perform this action")
	}
	return nil
}

// RequireArtist returns a not_artist error unless addr is the project's artist.
func (a *Authority) RequireArtist(ctx context.Context, id domain.ProjectID, addr domain.Address) error {
	ok, err := a.IsArtist(ctx, id, addr)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeNotArtist, "only the project artist may perform this action")
	}
	return nil
}

// RequireArtistOrSuperAdmin accepts either role.
func (a *Authority) RequireArtistOrSuperAdmin(ctx context.Context, id domain.ProjectID, addr domain.Address) error {
	ok, err := a.IsArtist(ctx, id, addr)
	if err != nil {
		return err
	}
	if !ok && !a.IsSuperAdmin(addr) {
		return dErrors.New(dErrors.CodeNotArtist, "only the project artist or super-admin may perform this action")
	}
	return nil
}
