package commands

import (
	"context"
	"testing"

	"github.com/ehime-live/live-schedule/app/database"
)

type recordingCreator struct {
	name     string
	password string
}

func (r *recordingCreator) CreateUser(ctx context.Context, name, password string) (*database.User, error) {
	r.name = name
	r.password = password
	return &database.User{ID: 1, Name: name}, nil
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		confirm  string
		wantErr  bool
	}{
		{name: "valid", user: " admin ", password: "secret", confirm: "secret"},
		{name: "empty name", user: " ", password: "secret", confirm: "secret", wantErr: true},
		{name: "empty password", user: "admin", password: "", confirm: "", wantErr: true},
		{name: "mismatch", user: "admin", password: "secret", confirm: "Secret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &recordingCreator{}
			user, err := createUser(context.Background(), creator, tt.user, tt.password, tt.confirm)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				if creator.name != "" {
					t.Error("Expected no user to be created")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if user.Name != "admin" || creator.password != "secret" {
				t.Errorf("Unexpected user %+v created with password %q", user, creator.password)
			}
		})
	}
}
