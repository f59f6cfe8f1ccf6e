package migrations

import _ "embed"

//go:embed 0002_create_users.sql
var createUsersSQL string

func init() {
	Migrations.MustRegister(execSQL(createUsersSQL), execSQL(`DROP TABLE IF EXISTS users`))
}
