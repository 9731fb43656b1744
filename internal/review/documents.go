package review

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"crowdfund/internal/domain"
	"crowdfund/internal/storage"
)

// UploadDocument stores a verification document for the caller. Accounts
// that were rejected, or never submitted, go back into the pending queue.
func (s *Service) UploadDocument(ctx context.Context, actor domain.Actor, kind domain.DocumentKind, payload string) (*domain.VerificationDocument, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(domain.RequiredDocuments(u.Role), kind) {
		return nil, &domain.ValidationError{Fields: map[string]string{"kind": fmt.Sprintf("is not a %s document", u.Role)}}
	}
	up, err := storage.DecodeUpload(payload, storage.DefaultMaxBytes)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{"data": err.Error()}}
	}
	key, err := s.files.Put(ctx, storage.ObjectKey(string(kind), u.ID, up.Ext), up.MIME, up.Data)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	doc := &domain.VerificationDocument{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		Kind:       kind,
		StorageKey: key,
		MIME:       up.MIME,
		Bytes:      int64(len(up.Data)),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	switch u.Verification {
	case domain.VerificationUnverified, domain.VerificationRejected:
		if _, err := s.users.UpdateVerification(ctx, u.ID, u.Verification, domain.VerificationPending, ""); err != nil {
			return nil, err
		}
		s.logger.Info().Str("user_id", u.ID).Msg("verification resubmitted")
	}
	return doc, nil
}
