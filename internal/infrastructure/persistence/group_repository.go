package persistence

import (
	"context"
	"time"

	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGroupRepository implements GroupRepository using GORM
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// Create inserts the group and sets its id
func (r *GormGroupRepository) Create(ctx context.Context, g *course.Group) error {
	model := &models.GroupModel{
		CourseCode:  g.CourseCode,
		Name:        g.Name,
		IsEvaluated: g.IsEvaluated,
		CreatedAt:   time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	g.ID = model.ID
	return nil
}

// FindByID finds a group by id
func (r *GormGroupRepository) FindByID(ctx context.Context, id int64) (*course.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the group with a row lock held until the transaction ends.
// Must be called on a transaction handle.
func (r *GormGroupRepository) FindByIDForUpdate(ctx context.Context, id int64) (*course.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every group ordered by id
func (r *GormGroupRepository) FindAll(ctx context.Context) ([]course.Group, error) {
	var rows []models.GroupModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toGroups(rows), nil
}

// FindByCourse returns the groups of one course
func (r *GormGroupRepository) FindByCourse(ctx context.Context, courseCode string) ([]course.Group, error) {
	var rows []models.GroupModel
	if err := r.db.WithContext(ctx).
		Where("course_code = ?", courseCode).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toGroups(rows), nil
}

// FindByMemberAndCourse finds the member's group within a course
func (r *GormGroupRepository) FindByMemberAndCourse(ctx context.Context, zid, courseCode string) (*course.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.member_zid = ? AND groups.course_code = ?", zid, courseCode).
		Order("groups.id ASC").
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByMember returns every group the user belongs to
func (r *GormGroupRepository) FindByMember(ctx context.Context, zid string) ([]course.Group, error) {
	var rows []models.GroupModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.member_zid = ?", zid).
		Order("groups.id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toGroups(rows), nil
}

// SetEvaluated persists the derived group evaluation flag
func (r *GormGroupRepository) SetEvaluated(ctx context.Context, id int64, evaluated bool) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.GroupModel{}).
		Where("id = ?", id).
		Update("is_evaluated", evaluated))
}

func toGroups(rows []models.GroupModel) []course.Group {
	out := make([]course.Group, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormMemberRepository implements the group MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// memberRow is a membership joined with the member's display name
type memberRow struct {
	models.GroupMemberModel
	Name string
}

// Add inserts a membership. A repeated (group, zid) returns ErrAlreadyExists.
func (r *GormMemberRepository) Add(ctx context.Context, m *course.GroupMember) error {
	model := &models.GroupMemberModel{
		GroupID:     m.GroupID,
		MemberZid:   m.MemberZid,
		IsLeader:    m.IsLeader,
		FinalScore:  m.FinalScore,
		IsEvaluated: m.IsEvaluated,
		JoinedAt:    time.Now(),
	}
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// FindByGroup lists the members of a group, leaders first
func (r *GormMemberRepository) FindByGroup(ctx context.Context, groupID int64) ([]course.GroupMember, error) {
	var rows []memberRow
	if err := r.memberQuery(ctx).
		Where("group_members.group_id = ?", groupID).
		Order("group_members.is_leader DESC, group_members.member_zid ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]course.GroupMember, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// Find returns a single membership
func (r *GormMemberRepository) Find(ctx context.Context, groupID int64, zid string) (*course.GroupMember, error) {
	var rows []memberRow
	if err := r.memberQuery(ctx).
		Where("group_members.group_id = ? AND group_members.member_zid = ?", groupID, zid).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, translateError(gorm.ErrRecordNotFound)
	}
	m := rows[0].toDomain()
	return &m, nil
}

// UpdateEvaluation writes the member's final score and evaluation flag
func (r *GormMemberRepository) UpdateEvaluation(ctx context.Context, m *course.GroupMember) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.GroupMemberModel{}).
		Where("group_id = ? AND member_zid = ?", m.GroupID, m.MemberZid).
		Updates(map[string]any{
			"final_score":  m.FinalScore,
			"is_evaluated": m.IsEvaluated,
		}))
}

// FirstGroupID returns the group the user joined first, or nil when the user has none
func (r *GormMemberRepository) FirstGroupID(ctx context.Context, zid string) (*int64, error) {
	var rows []models.GroupMemberModel
	if err := r.db.WithContext(ctx).
		Where("member_zid = ?", zid).
		Order("joined_at ASC, group_id ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	id := rows[0].GroupID
	return &id, nil
}

// IsMember reports whether the user belongs to the group
func (r *GormMemberRepository) IsMember(ctx context.Context, groupID int64, zid string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.GroupMemberModel{}).
		Where("group_id = ? AND member_zid = ?", groupID, zid).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormMemberRepository) memberQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("group_members").
		Select("group_members.*, COALESCE(users.name, '') AS name").
		Joins("LEFT JOIN users ON users.zid = group_members.member_zid")
}

func (row *memberRow) toDomain() course.GroupMember {
	m := row.GroupMemberModel.ToDomain()
	m.Name = row.Name
	return m
}

var (
	_ course.GroupRepository  = (*GormGroupRepository)(nil)
	_ course.MemberRepository = (*GormMemberRepository)(nil)
)
