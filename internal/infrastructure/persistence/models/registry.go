package models

// All returns every persistence model in foreign key order.
// Used by tests and local tooling that build the schema with AutoMigrate.
func All() []any {
	return []any{
		&RoleModel{},
		&UserModel{},
		&CourseModel{},
		&StatusModel{},
		&GroupModel{},
		&GroupMemberModel{},
		&AssignmentModel{},
		&MeetingModel{},
		&AttendanceModel{},
		&TaskModel{},
		&TaskAssigneeModel{},
		&PeerReviewModel{},
		&ContributionAnalysisModel{},
		&ChannelModel{},
		&ChannelMemberModel{},
		&MessageModel{},
		&OutboxEntryModel{},
	}
}
