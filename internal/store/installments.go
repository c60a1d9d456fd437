package store

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"

	"ravehub/internal/status"
	"ravehub/models"
)

// FindInstallment loads an installment by id.
func (s *Store) FindInstallment(ctx context.Context, id string) (*models.PaymentInstallment, error) {
	record, err := s.app.FindRecordById(CollectionInstallments, id)
	if err != nil {
		return nil, status.ErrInstallmentNotFound
	}
	return installmentFromRecord(record), nil
}

// ListTransactionInstallments returns a transaction's schedule ordered by
// installment number.
func (s *Store) ListTransactionInstallments(ctx context.Context, transactionID string) ([]*models.PaymentInstallment, error) {
	records, err := s.app.FindRecordsByFilter(CollectionInstallments,
		"transaction_id = {:transactionId}", "installment_number", 0, 0,
		map[string]any{"transactionId": transactionID})
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}

	result := make([]*models.PaymentInstallment, 0, len(records))
	for _, r := range records {
		result = append(result, installmentFromRecord(r))
	}
	return result, nil
}

// ListPendingInstallments returns every installment with uploaded proof
// awaiting an admin decision, oldest upload first.
func (s *Store) ListPendingInstallments(ctx context.Context) ([]*models.PaymentInstallment, error) {
	records := []*core.Record{}
	err := s.app.RecordQuery(CollectionInstallments).
		AndWhere(dbx.HashExp{"status": string(status.InstallmentPending), "admin_approved": false}).
		AndWhere(dbx.Not(dbx.HashExp{"proof": ""})).
		OrderBy("proof_uploaded_at ASC").
		All(&records)
	if err != nil {
		return nil, fmt.Errorf("list pending installments: %w", err)
	}

	result := make([]*models.PaymentInstallment, 0, len(records))
	for _, r := range records {
		result = append(result, installmentFromRecord(r))
	}
	return result, nil
}

// ReviewInstallment persists an approve/reject decision.
func (s *Store) ReviewInstallment(ctx context.Context, id string, st status.InstallmentStatus, approved bool, reason string) error {
	record, err := s.app.FindRecordById(CollectionInstallments, id)
	if err != nil {
		return status.ErrInstallmentNotFound
	}

	record.Set("status", string(st))
	record.Set("admin_approved", approved)
	record.Set("reject_reason", reason)
	return s.app.SaveWithContext(ctx, record)
}

// AttachProof stores an uploaded proof-of-payment image on the
// installment and stamps the upload time. A rejected installment returns
// to pending so it re-enters the review queue.
func (s *Store) AttachProof(ctx context.Context, id string, file *multipart.FileHeader) error {
	record, err := s.app.FindRecordById(CollectionInstallments, id)
	if err != nil {
		return status.ErrInstallmentNotFound
	}

	f, err := filesystem.NewFileFromMultipart(file)
	if err != nil {
		return fmt.Errorf("read proof upload: %w", err)
	}

	record.Set("proof", f)
	record.Set("proof_uploaded_at", time.Now())
	record.Set("status", string(status.InstallmentPending))
	record.Set("reject_reason", "")
	return s.app.SaveWithContext(ctx, record)
}

func installmentFromRecord(r *core.Record) *models.PaymentInstallment {
	in := &models.PaymentInstallment{
		ID:            r.Id,
		TransactionID: r.GetString("transaction_id"),
		Number:        r.GetInt("installment_number"),
		Amount:        r.GetFloat("amount"),
		Currency:      r.GetString("currency"),
		DueDate:       r.GetDateTime("due_date").Time(),
		Status:        status.InstallmentStatus(r.GetString("status")),
		AdminApproved: r.GetBool("admin_approved"),
		RejectReason:  r.GetString("reject_reason"),
	}

	if proof := r.GetString("proof"); proof != "" {
		in.ProofURL = fmt.Sprintf("/api/files/%s/%s/%s", CollectionInstallments, r.Id, proof)
	}
	if dt := r.GetDateTime("proof_uploaded_at"); !dt.IsZero() {
		t := dt.Time()
		in.ProofUploadedAt = &t
	}

	return in
}
