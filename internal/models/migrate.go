package models

// RelationalModels lists the GORM models migrated into PostgreSQL.
func RelationalModels() []interface{} {
	return []interface{}{
		&User{},
		&FriendRequest{},
		&Friendship{},
		&Group{},
		&GroupMember{},
		&GroupJoinRequest{},
		&Notification{},
	}
}
