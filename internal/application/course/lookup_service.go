// Package course contains the application services for the course catalogue,
// groups, evaluation release and assignments.
package course

import (
	"context"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/course"
	"go.uber.org/zap"
)

// LookupService serves the cached catalogue lists and the group lookups
type LookupService struct {
	courses     course.CourseRepository
	statuses    course.StatusRepository
	groups      course.GroupRepository
	members     course.MemberRepository
	assignments course.AssignmentRepository
	cache       appshared.LookupCache
	logger      *zap.Logger
}

// NewLookupService creates a new lookup service. cache may be nil.
func NewLookupService(
	courses course.CourseRepository,
	statuses course.StatusRepository,
	groups course.GroupRepository,
	members course.MemberRepository,
	assignments course.AssignmentRepository,
	cache appshared.LookupCache,
	logger *zap.Logger,
) *LookupService {
	return &LookupService{
		courses:     courses,
		statuses:    statuses,
		groups:      groups,
		members:     members,
		assignments: assignments,
		cache:       cache,
		logger:      logger,
	}
}

// Courses lists every course
func (s *LookupService) Courses(ctx context.Context) ([]CourseInfo, error) {
	out, err := appshared.CachedList(ctx, s.cache, s.logger, appshared.LookupCourses, func(ctx context.Context) ([]CourseInfo, error) {
		rows, err := s.courses.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]CourseInfo, 0, len(rows))
		for _, c := range rows {
			out = append(out, CourseInfo{Code: c.Code, Name: c.Name})
		}
		return out, nil
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list courses", err)
	}
	return out, nil
}

// Groups lists every group
func (s *LookupService) Groups(ctx context.Context) ([]GroupInfo, error) {
	out, err := appshared.CachedList(ctx, s.cache, s.logger, appshared.LookupGroups, func(ctx context.Context) ([]GroupInfo, error) {
		rows, err := s.groups.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]GroupInfo, 0, len(rows))
		for _, g := range rows {
			out = append(out, GroupInfo{ID: g.ID, CourseCode: g.CourseCode, Name: g.Name})
		}
		return out, nil
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list groups", err)
	}
	return out, nil
}

// Statuses lists the task statuses
func (s *LookupService) Statuses(ctx context.Context) ([]StatusInfo, error) {
	out, err := appshared.CachedList(ctx, s.cache, s.logger, appshared.LookupStatuses, func(ctx context.Context) ([]StatusInfo, error) {
		rows, err := s.statuses.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]StatusInfo, 0, len(rows))
		for _, st := range rows {
			out = append(out, StatusInfo{StatusID: st.ID, StatusName: st.Name})
		}
		return out, nil
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list statuses", err)
	}
	return out, nil
}

// Assignments lists every assignment
func (s *LookupService) Assignments(ctx context.Context) ([]AssignmentInfo, error) {
	out, err := appshared.CachedList(ctx, s.cache, s.logger, appshared.LookupAssignments, func(ctx context.Context) ([]AssignmentInfo, error) {
		rows, err := s.assignments.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]AssignmentInfo, 0, len(rows))
		for i := range rows {
			out = append(out, ToAssignmentInfo(&rows[i]))
		}
		return out, nil
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list assignments", err)
	}
	return out, nil
}

// AssignmentsByCourse filters the cached assignment list to one course
func (s *LookupService) AssignmentsByCourse(ctx context.Context, courseCode string) ([]AssignmentInfo, error) {
	all, err := s.Assignments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AssignmentInfo, 0)
	for _, a := range all {
		if a.CourseCode == courseCode {
			out = append(out, a)
		}
	}
	return out, nil
}

// GroupID returns the id of the user's group in a course
func (s *LookupService) GroupID(ctx context.Context, zid, courseCode string) (int64, error) {
	group, err := s.groups.FindByMemberAndCourse(ctx, zid, courseCode)
	if err != nil {
		return 0, appshared.NotFound(s.logger, err, "Group not found")
	}
	return group.ID, nil
}

// GroupMembers lists the members of a group
func (s *LookupService) GroupMembers(ctx context.Context, groupID int64) (*GroupMembersResult, error) {
	members, err := s.loadMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		out = append(out, MemberInfo{Zid: m.MemberZid, Name: m.Name, IsLeader: m.IsLeader})
	}
	return &GroupMembersResult{GroupID: groupID, Members: out}, nil
}

// TeamMembers lists the members of a group with their group id
func (s *LookupService) TeamMembers(ctx context.Context, groupID int64) (*TeamMembersResult, error) {
	members, err := s.loadMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]TeamMemberInfo, 0, len(members))
	for _, m := range members {
		out = append(out, TeamMemberInfo{Zid: m.MemberZid, Name: m.Name, IsLeader: m.IsLeader, GroupID: m.GroupID})
	}
	return &TeamMembersResult{GroupID: groupID, Members: out}, nil
}

func (s *LookupService) loadMembers(ctx context.Context, groupID int64) ([]course.GroupMember, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return nil, appshared.NotFound(s.logger, err, "Group not found")
	}
	members, err := s.members.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list group members", err, zap.Int64("group_id", groupID))
	}
	return members, nil
}

// InvalidateLookups drops the named cached lists
func (s *LookupService) InvalidateLookups(ctx context.Context, names ...string) {
	if s.cache == nil || len(names) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, names...); err != nil {
		s.logger.Warn("Lookup cache invalidation failed", zap.Strings("lookups", names), zap.Error(err))
	}
}
