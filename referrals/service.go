package referrals

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"referral-portal-server/models"
)

// Service is the referral network core: identity store, code registry,
// referral graph, enrollment lifecycle and ranking sit behind it. All
// mutations run in a single transaction and use conditional UPDATEs plus SQL
// counter expressions, so concurrent requests against the same college or
// student cannot lose updates.
type Service struct {
	db    *gorm.DB
	board *board
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, board: &board{}}
}

type CollegeSignup struct {
	Name             string
	Email            string
	PasswordHash     string
	CollegeName      string
	YearOfGraduation string
	PhoneNumber      string
}

type StudentSignup struct {
	Name            string
	PhoneNumber     string
	PasswordHash    string
	SchoolName      string
	Standard        string
	Address         string
	FeedbackDetails string
	ReferralCode    string
}

// SignupCollege creates a college account and issues it a fresh referral
// code. The code is unique against every code ever issued at the moment of
// commit.
func (s *Service) SignupCollege(ctx context.Context, in CollegeSignup) (*models.Account, error) {
	acct := &models.Account{
		Kind:             models.KindCollege,
		Name:             in.Name,
		Contact:          in.Email,
		Phone:            in.PhoneNumber,
		Password:         in.PasswordHash,
		OrganizationName: in.CollegeName,
		YearOfGraduation: in.YearOfGraduation,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureContactFree(tx, acct.Contact); err != nil {
			return err
		}
		return insertCollege(tx, acct)
	})
	if err != nil {
		return nil, err
	}
	s.board.invalidate()
	return acct, nil
}

// SignupStudent creates a student account in the pending state. A non-empty
// referral code must resolve to a college or the whole signup fails; an empty
// code is allowed and stores no attribution.
func (s *Service) SignupStudent(ctx context.Context, in StudentSignup) (*models.Account, error) {
	acct := &models.Account{
		Kind:             models.KindStudent,
		Name:             in.Name,
		Contact:          in.PhoneNumber,
		Phone:            in.PhoneNumber,
		Password:         in.PasswordHash,
		OrganizationName: in.SchoolName,
		GroupLabel:       in.Standard,
		Address:          in.Address,
		FeedbackDetails:  in.FeedbackDetails,
		State:            models.StatePending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var college *models.Account
		if code := NormalizeCode(in.ReferralCode); code != "" {
			c, err := resolveCode(tx, code)
			if err != nil {
				return err
			}
			college = c
		}
		if err := ensureContactFree(tx, acct.Contact); err != nil {
			return err
		}
		if err := tx.Create(acct).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateContact
			}
			return err
		}
		if college != nil {
			return addEdge(tx, acct, college)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// addEdge records the student -> college edge and stamps the attribution on
// the student row. Attribution is permanent: a student that already carries a
// referred-by code cannot be re-attributed.
func addEdge(tx *gorm.DB, student, college *models.Account) error {
	if student.ReferredByCode != nil {
		return ErrAlreadyAttributed
	}
	if college.ReferralCode == nil || college.Kind != models.KindCollege {
		return ErrUnknownCode
	}
	code := *college.ReferralCode
	edge := models.Referral{
		ReferredID: student.ID,
		ReferrerID: college.ID,
		Code:       code,
	}
	if err := tx.Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyAttributed
		}
		return err
	}
	student.ReferredByCode = &code
	return tx.Model(student).Update("referred_by_code", code).Error
}

func ensureContactFree(tx *gorm.DB, contact string) error {
	// Unique across both kinds: one contact string is one principal.
	var n int64
	if err := tx.Model(&models.Account{}).Where("contact = ?", contact).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateContact
	}
	return nil
}

// Get loads any account by id.
func (s *Service) Get(ctx context.Context, id uint) (*models.Account, error) {
	var acct models.Account
	err := s.db.WithContext(ctx).First(&acct, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// FindByContact resolves the login key for one account kind.
func (s *Service) FindByContact(ctx context.Context, kind models.AccountKind, contact string) (*models.Account, error) {
	var acct models.Account
	err := s.db.WithContext(ctx).Where("kind = ? AND contact = ?", kind, contact).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// OwnerOf returns the id of the college a student is attributed to.
// Unattributed students resolve to no owner.
func (s *Service) OwnerOf(ctx context.Context, studentID uint) (uint, error) {
	var edge models.Referral
	err := s.db.WithContext(ctx).Where("referred_id = ?", studentID).First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return edge.ReferrerID, nil
}

// Enable moves a pending student to enabled and bumps the owning college's
// counter in the same transaction. Enabling an already-enabled student is a
// no-op; a removed student cannot come back.
func (s *Service) Enable(ctx context.Context, studentID uint) (*models.Account, error) {
	var out *models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Account{}).
			Where("id = ? AND kind = ? AND state = ?", studentID, models.KindStudent, models.StatePending).
			Update("state", models.StateEnabled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			if err := bumpOwnerCount(tx, studentID, +1); err != nil {
				return err
			}
		} else {
			st, err := getStudent(tx, studentID)
			if err != nil {
				return err
			}
			if st.State == models.StateRemoved {
				return ErrInvalidState
			}
		}
		st, err := getStudent(tx, studentID)
		if err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.board.invalidate()
	return out, nil
}

// Remove marks a student removed and clears its video reference. The record
// is kept; removing an already-removed student succeeds without doing
// anything.
func (s *Service) Remove(ctx context.Context, studentID uint) (*models.Account, error) {
	var out *models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed := map[string]interface{}{
			"state":     models.StateRemoved,
			"video_url": nil,
		}

		res := tx.Model(&models.Account{}).
			Where("id = ? AND kind = ? AND state = ?", studentID, models.KindStudent, models.StateEnabled).
			Updates(removed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			if err := bumpOwnerCount(tx, studentID, -1); err != nil {
				return err
			}
		} else {
			res = tx.Model(&models.Account{}).
				Where("id = ? AND kind = ? AND state = ?", studentID, models.KindStudent, models.StatePending).
				Updates(removed)
			if res.Error != nil {
				return res.Error
			}
		}

		st, err := getStudent(tx, studentID)
		if err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.board.invalidate()
	return out, nil
}

// Purge hard-deletes a student: account row and graph edge both go. Only an
// explicit purge does this; the normal delete flow is Remove.
func (s *Service) Purge(ctx context.Context, studentID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := getStudent(tx, studentID)
		if err != nil {
			return err
		}
		// Flip enabled -> removed first and let RowsAffected decide the
		// decrement, so a concurrent Remove of the same student cannot
		// shift the counter twice.
		res := tx.Model(&models.Account{}).
			Where("id = ? AND kind = ? AND state = ?", studentID, models.KindStudent, models.StateEnabled).
			Update("state", models.StateRemoved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			if err := bumpOwnerCount(tx, studentID, -1); err != nil {
				return err
			}
		}
		if err := tx.Where("referred_id = ?", studentID).Delete(&models.Referral{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Account{}, st.ID).Error
	})
	if err != nil {
		return err
	}
	s.board.invalidate()
	return nil
}

// AttachVideo replaces the student's video reference. Allowed while pending
// or enabled; the enrollment state never changes. The previous reference is
// simply discarded, cleaning up the underlying blob is the caller's problem.
func (s *Service) AttachVideo(ctx context.Context, studentID uint, assetURL string) (*models.Account, error) {
	var out *models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Account{}).
			Where("id = ? AND kind = ? AND state IN ?", studentID, models.KindStudent,
				[]models.EnrollmentState{models.StatePending, models.StateEnabled}).
			Update("video_url", assetURL)
		if res.Error != nil {
			return res.Error
		}
		st, err := getStudent(tx, studentID)
		if err != nil {
			return err
		}
		// mysql reports changed rows, not matched rows: zero affected can
		// also mean the same reference was re-attached. Only a removed
		// student is an actual violation.
		if res.RowsAffected == 0 && st.State == models.StateRemoved {
			return ErrInvalidState
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.board.invalidate()
	return out, nil
}

// DetachVideo clears the video reference. No state change, and detaching a
// student that has no video is fine.
func (s *Service) DetachVideo(ctx context.Context, studentID uint) (*models.Account, error) {
	var out *models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := getStudent(tx, studentID)
		if err != nil {
			return err
		}
		if err := tx.Model(st).Update("video_url", nil).Error; err != nil {
			return err
		}
		st.VideoURL = nil
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.board.invalidate()
	return out, nil
}

// DeleteCollege removes a college account. It refuses while any referred
// student is still attached, so a dangling graph edge can never appear.
func (s *Service) DeleteCollege(ctx context.Context, collegeID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var college models.Account
		err := tx.Where("id = ? AND kind = ?", collegeID, models.KindCollege).First(&college).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Referral{}).Where("referrer_id = ?", collegeID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrReferredRemain
		}
		return tx.Delete(&models.Account{}, collegeID).Error
	})
	if err != nil {
		return err
	}
	s.board.invalidate()
	return nil
}

func getStudent(tx *gorm.DB, id uint) (*models.Account, error) {
	var st models.Account
	err := tx.Where("id = ? AND kind = ?", id, models.KindStudent).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// bumpOwnerCount shifts the enabled counter of the college owning a student.
// The increment is a SQL expression so two concurrent enables under the same
// college both land. Unattributed students count for no one.
func bumpOwnerCount(tx *gorm.DB, studentID uint, delta int) error {
	var edge models.Referral
	err := tx.Where("referred_id = ?", studentID).First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Model(&models.Account{}).
		Where("id = ?", edge.ReferrerID).
		Update("enabled_count", gorm.Expr("enabled_count + ?", delta)).Error
}
