package persistence

import (
	"context"
	"time"

	"github.com/avocado/teamhub/internal/domain/channel"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormChannelRepository implements ChannelRepository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// Create inserts a channel. A taken name returns ErrAlreadyExists.
func (r *GormChannelRepository) Create(ctx context.Context, c *channel.Channel) error {
	model := models.ChannelModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	c.ID = model.ID
	return nil
}

// FindByID finds a channel by id
func (r *GormChannelRepository) FindByID(ctx context.Context, id int64) (*channel.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	c := model.ToDomain()
	return &c, nil
}

// FindAll returns every channel ordered by id
func (r *GormChannelRepository) FindAll(ctx context.Context) ([]channel.Channel, error) {
	var rows []models.ChannelModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toChannels(rows), nil
}

// FindByMember returns the channels a user has joined
func (r *GormChannelRepository) FindByMember(ctx context.Context, zid string) ([]channel.Channel, error) {
	var rows []models.ChannelModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN channel_members ON channel_members.channel_id = channels.id").
		Where("channel_members.zid = ?", zid).
		Order("channels.id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toChannels(rows), nil
}

// FindByGroup returns the channels attached to a group
func (r *GormChannelRepository) FindByGroup(ctx context.Context, groupID int64) ([]channel.Channel, error) {
	var rows []models.ChannelModel
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toChannels(rows), nil
}

// Delete removes the channel with its messages and members.
// Call it on a transaction handle so the three deletes commit together.
func (r *GormChannelRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("channel_id = ?", id).Delete(&models.MessageModel{}).Error; err != nil {
		return err
	}
	if err := db.Where("channel_id = ?", id).Delete(&models.ChannelMemberModel{}).Error; err != nil {
		return err
	}
	return affected(db.Delete(&models.ChannelModel{}, "id = ?", id))
}

func toChannels(rows []models.ChannelModel) []channel.Channel {
	out := make([]channel.Channel, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// GormChannelMemberRepository implements the channel MemberRepository using GORM
type GormChannelMemberRepository struct {
	db *gorm.DB
}

// NewGormChannelMemberRepository creates a new GormChannelMemberRepository
func NewGormChannelMemberRepository(db *gorm.DB) *GormChannelMemberRepository {
	return &GormChannelMemberRepository{db: db}
}

// Add joins a user to a channel. An existing membership returns ErrAlreadyExists.
func (r *GormChannelMemberRepository) Add(ctx context.Context, m *channel.Member) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return translateError(r.db.WithContext(ctx).Create(&models.ChannelMemberModel{
		ChannelID: m.ChannelID,
		Zid:       m.Zid,
		JoinedAt:  m.JoinedAt,
	}).Error)
}

// Remove deletes a membership; ErrNotFound when the user was not a member
func (r *GormChannelMemberRepository) Remove(ctx context.Context, channelID int64, zid string) error {
	return affected(r.db.WithContext(ctx).
		Where("channel_id = ? AND zid = ?", channelID, zid).
		Delete(&models.ChannelMemberModel{}))
}

// FindByChannel lists members with their display names in join order
func (r *GormChannelMemberRepository) FindByChannel(ctx context.Context, channelID int64) ([]channel.Member, error) {
	var rows []struct {
		models.ChannelMemberModel
		Name string
	}
	if err := r.db.WithContext(ctx).
		Table("channel_members").
		Select("channel_members.*, COALESCE(users.name, '') AS name").
		Joins("LEFT JOIN users ON users.zid = channel_members.zid").
		Where("channel_members.channel_id = ?", channelID).
		Order("channel_members.joined_at ASC, channel_members.zid ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]channel.Member, len(rows))
	for i, row := range rows {
		out[i] = channel.Member{
			ChannelID: row.ChannelID,
			Zid:       row.Zid,
			Name:      row.Name,
			JoinedAt:  row.JoinedAt,
		}
	}
	return out, nil
}

// IsMember reports whether the user has joined the channel
func (r *GormChannelMemberRepository) IsMember(ctx context.Context, channelID int64, zid string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChannelMemberModel{}).
		Where("channel_id = ? AND zid = ?", channelID, zid).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormMessageRepository implements MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create stores a message and sets its id
func (r *GormMessageRepository) Create(ctx context.Context, m *channel.Message) error {
	model := models.MessageModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	m.ID = model.ID
	return nil
}

// FindByChannel returns a channel's messages in send order
func (r *GormMessageRepository) FindByChannel(ctx context.Context, channelID int64) ([]channel.Message, error) {
	var rows []models.MessageModel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("sent_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMessages(rows), nil
}

// FindRecent returns up to limit messages sent before beforeID, oldest first.
// A beforeID of 0 means the latest messages.
func (r *GormMessageRepository) FindRecent(ctx context.Context, channelID, beforeID int64, limit int) ([]channel.Message, error) {
	q := r.db.WithContext(ctx).Where("channel_id = ?", channelID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var rows []models.MessageModel
	if err := q.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return toMessages(rows), nil
}

func toMessages(rows []models.MessageModel) []channel.Message {
	out := make([]channel.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var (
	_ channel.ChannelRepository = (*GormChannelRepository)(nil)
	_ channel.MemberRepository  = (*GormChannelMemberRepository)(nil)
	_ channel.MessageRepository = (*GormMessageRepository)(nil)
)
