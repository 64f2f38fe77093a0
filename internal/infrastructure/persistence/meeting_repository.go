package persistence

import (
	"context"
	"time"

	"github.com/avocado/teamhub/internal/domain/meeting"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMeetingRepository implements MeetingRepository using GORM
type GormMeetingRepository struct {
	db *gorm.DB
}

// NewGormMeetingRepository creates a new GormMeetingRepository
func NewGormMeetingRepository(db *gorm.DB) *GormMeetingRepository {
	return &GormMeetingRepository{db: db}
}

// meetingViewRow is a meeting joined with its assignment and group
type meetingViewRow struct {
	models.MeetingModel
	AssignmentName    *string
	AssignmentDueDate *time.Time
	GroupName         *string
}

// Create inserts the meeting and sets its id
func (r *GormMeetingRepository) Create(ctx context.Context, m *meeting.Meeting) error {
	model := models.MeetingModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	m.ID = model.ID
	return nil
}

// FindByID finds a meeting by id
func (r *GormMeetingRepository) FindByID(ctx context.Context, id int64) (*meeting.Meeting, error) {
	var model models.MeetingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the meeting with a row lock; use inside a transaction
func (r *GormMeetingRepository) FindByIDForUpdate(ctx context.Context, id int64) (*meeting.Meeting, error) {
	var model models.MeetingModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindViewsByGroup lists a group's meetings by start time with assignment and group names
func (r *GormMeetingRepository) FindViewsByGroup(ctx context.Context, groupID int64) ([]meeting.View, error) {
	var rows []meetingViewRow
	if err := r.db.WithContext(ctx).
		Table("meetings").
		Select("meetings.*, assignments.name AS assignment_name, assignments.due_date AS assignment_due_date, groups.name AS group_name").
		Joins("LEFT JOIN assignments ON assignments.id = meetings.assignment_id").
		Joins("LEFT JOIN groups ON groups.id = meetings.group_id").
		Where("meetings.group_id = ?", groupID).
		Order("meetings.start_time ASC, meetings.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]meeting.View, len(rows))
	for i := range rows {
		v := meeting.View{
			Meeting:           *rows[i].MeetingModel.ToDomain(),
			AssignmentDueDate: rows[i].AssignmentDueDate,
		}
		if rows[i].AssignmentName != nil {
			v.AssignmentName = *rows[i].AssignmentName
		}
		if rows[i].GroupName != nil {
			v.GroupName = *rows[i].GroupName
		}
		views[i] = v
	}
	return views, nil
}

// UpdateStatus writes the meeting status
func (r *GormMeetingRepository) UpdateStatus(ctx context.Context, m *meeting.Meeting) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.MeetingModel{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"status":     string(m.Status),
			"updated_at": m.UpdatedAt,
		}))
}

// SetAgenda stores a generated agenda
func (r *GormMeetingRepository) SetAgenda(ctx context.Context, id int64, agenda string) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.MeetingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"agenda":     agenda,
			"updated_at": time.Now(),
		}))
}

// FindOverdueIDs returns scheduled meetings whose end time has passed, oldest first
func (r *GormMeetingRepository) FindOverdueIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.MeetingModel{}).
		Where("status = ? AND end_time <= ?", string(meeting.StatusScheduled), now).
		Order("end_time ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// GormAttendanceRepository implements AttendanceRepository using GORM
type GormAttendanceRepository struct {
	db *gorm.DB
}

// NewGormAttendanceRepository creates a new GormAttendanceRepository
func NewGormAttendanceRepository(db *gorm.DB) *GormAttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

// CreateBatch inserts the placeholder rows written when a meeting is scheduled
func (r *GormAttendanceRepository) CreateBatch(ctx context.Context, rows []meeting.Attendance) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([]*models.AttendanceModel, len(rows))
	for i := range rows {
		batch[i] = models.AttendanceModelFromDomain(&rows[i])
	}
	return translateError(r.db.WithContext(ctx).Create(&batch).Error)
}

// Upsert inserts or replaces the row keyed by (meeting_id, member_zid)
func (r *GormAttendanceRepository) Upsert(ctx context.Context, a *meeting.Attendance) error {
	model := models.AttendanceModelFromDomain(a)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}, {Name: "member_zid"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"group_id",
				"join_time",
				"leave_time",
				"meeting_duration_hour",
				"participation_duration_hour",
				"is_present",
			}),
		}).
		Create(model).Error
}

// Find returns the member's rows for one meeting
func (r *GormAttendanceRepository) Find(ctx context.Context, meetingID int64, memberZid string) ([]meeting.Attendance, error) {
	var rows []models.AttendanceModel
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND member_zid = ?", meetingID, memberZid).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAttendances(rows), nil
}

// FindByMeeting returns every row of a meeting
func (r *GormAttendanceRepository) FindByMeeting(ctx context.Context, meetingID int64) ([]meeting.Attendance, error) {
	var rows []models.AttendanceModel
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("member_zid ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAttendances(rows), nil
}

func toAttendances(rows []models.AttendanceModel) []meeting.Attendance {
	out := make([]meeting.Attendance, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var (
	_ meeting.MeetingRepository    = (*GormMeetingRepository)(nil)
	_ meeting.AttendanceRepository = (*GormAttendanceRepository)(nil)
)
