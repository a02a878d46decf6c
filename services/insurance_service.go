package services

import (
	"context"
	"time"

	"lifeline/models"
	"lifeline/utils"

	"github.com/sirupsen/logrus"
)

// InsuranceStore is the policy persistence surface.
type InsuranceStore interface {
	Create(ctx context.Context, policy *models.InsurancePolicy) error
	GetByUserID(ctx context.Context, userID string) (*models.InsurancePolicy, error)
	SetStatus(ctx context.Context, policyID, status string) error
}

// InsuranceService verifies patient coverage with the provider registry.
// Government scheme lookups (Ayushman Bharat, Aarogyasri) are answered from
// the policy record itself; there is no live provider API in this
// deployment, so an unexpired active policy verifies.
type InsuranceService struct {
	store InsuranceStore
}

func NewInsuranceService(store InsuranceStore) *InsuranceService {
	return &InsuranceService{store: store}
}

func (is *InsuranceService) Register(ctx context.Context, policy *models.InsurancePolicy) error {
	if policy.ValidUpto.Before(policy.ValidFrom) {
		return utils.NewBadRequestError("policy validity window is inverted")
	}
	return is.store.Create(ctx, policy)
}

func (is *InsuranceService) GetByUserID(ctx context.Context, userID string) (*models.InsurancePolicy, error) {
	return is.store.GetByUserID(ctx, userID)
}

// Verify checks the user's policy and returns a snapshot suitable for
// stamping onto an emergency. A user without a policy verifies to a
// no-insurance snapshot rather than an error; dispatch proceeds either way.
func (is *InsuranceService) Verify(ctx context.Context, userID string) (models.InsuranceSnapshot, *models.VerificationResult, error) {
	policy, err := is.store.GetByUserID(ctx, userID)
	if err != nil {
		if utils.IsNotFound(err) {
			return models.InsuranceSnapshot{
				HasInsurance: false,
				Provider:     models.InsuranceProviderNone,
				Status:       models.InsuranceStatusRejected,
			}, &models.VerificationResult{
				Verified: false,
				Status:   models.InsuranceStatusRejected,
				Message:  "no policy on file",
			}, nil
		}
		return models.InsuranceSnapshot{}, nil, err
	}

	now := time.Now()
	if now.After(policy.ValidUpto) {
		if setErr := is.store.SetStatus(ctx, policy.ID, models.InsuranceStatusExpired); setErr != nil {
			logrus.Warnf("Failed to mark policy %s expired: %v", policy.ID, setErr)
		}
		return models.InsuranceSnapshot{
			HasInsurance: true,
			Provider:     policy.Provider,
			PolicyNumber: policy.PolicyNumber,
			Status:       models.InsuranceStatusExpired,
		}, &models.VerificationResult{
			Verified: false,
			Status:   models.InsuranceStatusExpired,
			Provider: policy.Provider,
			Message:  "policy expired",
		}, nil
	}

	if err := is.store.SetStatus(ctx, policy.ID, models.InsuranceStatusVerified); err != nil {
		logrus.Warnf("Failed to mark policy %s verified: %v", policy.ID, err)
	}

	return models.InsuranceSnapshot{
			HasInsurance: true,
			Provider:     policy.Provider,
			PolicyNumber: policy.PolicyNumber,
			Status:       models.InsuranceStatusVerified,
		}, &models.VerificationResult{
			Verified: true,
			Status:   models.InsuranceStatusVerified,
			Provider: policy.Provider,
			Coverage: policy.Coverage.Amount,
		}, nil
}
