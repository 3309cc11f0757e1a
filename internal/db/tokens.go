package db

func (d *DB) CreateToken(token *Token) error {
	return d.db.Create(token).Error
}

// UserForToken resolves a bearer token to the user it was issued to.
func (d *DB) UserForToken(value string) (*User, error) {
	token := &Token{}

	err := d.db.Preload("User").Where("token = ?", value).First(token).Error
	if err != nil {
		return nil, wrapNotFound(err, "token", 0)
	}

	return &token.User, nil
}
