// Package models holds the minter registry's records and request bodies.
package models

import (
	"strings"
	"time"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Assignment binds a project to the single minter allowed to admit purchases for it.
type Assignment struct {
	ProjectID  domain.ProjectID `json:"project_id"`
	Minter     domain.MinterID  `json:"minter"`
	AssignedAt time.Time        `json:"assigned_at"`
}

// ApprovedMinter is a member of the approved set.
type ApprovedMinter struct {
	Minter     domain.MinterID `json:"minter"`
	ApprovedAt time.Time       `json:"approved_at"`
}

// ApproveMinterRequest is the body of POST /registry/minters.
type ApproveMinterRequest struct {
	Minter string `json:"minter"`

	minter domain.MinterID
}

func (r *ApproveMinterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	m, err := domain.ParseMinterID(strings.TrimSpace(r.Minter))
	if err != nil {
		return err
	}
	r.minter = m
	return nil
}

// MinterID returns the parsed minter. Only valid after Validate.
func (r *ApproveMinterRequest) MinterID() domain.MinterID {
	return r.minter
}

// AssignMinterRequest is the body of PUT /registry/projects/{projectID}/minter.
type AssignMinterRequest struct {
	Minter string `json:"minter"`

	minter domain.MinterID
}

func (r *AssignMinterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	m, err := domain.ParseMinterID(strings.TrimSpace(r.Minter))
	if err != nil {
		return err
	}
	r.minter = m
	return nil
}

func (r *AssignMinterRequest) MinterID() domain.MinterID {
	return r.minter
}

// AssignedMinterResponse answers GET /registry/projects/{projectID}/minter.
// Minter is empty when the project has no assignment.
type AssignedMinterResponse struct {
	ProjectID domain.ProjectID `json:"project_id"`
	Minter    domain.MinterID  `json:"minter,omitempty"`
	Assigned  bool             `json:"assigned"`
}
