package service

import (
	"context"
	"strings"

	"quicket/internal/auth"
	"quicket/internal/model"
)

// VenueService handles venue CRUD.
type VenueService struct {
	venues VenueStore
}

// NewVenueService constructs a VenueService.
func NewVenueService(venues VenueStore) *VenueService {
	return &VenueService{venues: venues}
}

// Create validates and inserts a new venue.
func (s *VenueService) Create(ctx context.Context, caller auth.Caller, req model.CreateVenueRequest) (*model.Venue, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" {
		return nil, invalidf("name is required")
	}
	if req.Address == "" {
		return nil, invalidf("address is required")
	}
	if req.Capacity < 1 {
		return nil, invalidf("capacity must be a positive integer")
	}
	return s.venues.Create(ctx, req)
}

// Get returns one venue with its hosted events.
func (s *VenueService) Get(ctx context.Context, id string) (*model.VenueDetail, error) {
	return s.venues.GetDetail(ctx, id)
}

// List returns all venues.
func (s *VenueService) List(ctx context.Context) ([]model.Venue, error) {
	return s.venues.List(ctx)
}

// Update applies a partial update to a venue.
func (s *VenueService) Update(ctx context.Context, caller auth.Caller, id string, req model.UpdateVenueRequest) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	venue, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return invalidf("name cannot be empty")
		}
		venue.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		if strings.TrimSpace(*req.Address) == "" {
			return invalidf("address cannot be empty")
		}
		venue.Address = strings.TrimSpace(*req.Address)
	}
	if req.Description != nil {
		venue.Description = *req.Description
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return invalidf("capacity must be a positive integer")
		}
		venue.Capacity = *req.Capacity
	}
	if req.Latitude != nil {
		venue.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		venue.Longitude = req.Longitude
	}
	return s.venues.Update(ctx, *venue)
}

// Delete removes a venue; it fails while any event references it.
func (s *VenueService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.venues.Delete(ctx, id)
}
