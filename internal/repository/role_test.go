package repository

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lesechos/accounts/internal/models"
)

var storedRoleCases = []struct {
	name    string
	stored  string
	want    models.Role
	wantErr bool
}{
	{name: "canonical admin", stored: "ADMIN", want: models.RoleAdmin},
	{name: "canonical user", stored: "USER", want: models.RoleUser},
	{name: "legacy lowercase admin", stored: "admin", want: models.RoleAdmin},
	{name: "legacy lowercase user", stored: "user", want: models.RoleUser},
	{name: "unknown role", stored: "SUPERUSER", wantErr: true},
	{name: "empty role", stored: "", wantErr: true},
}

// fakeRow satisfies pgx.Row by copying values into the scan targets.
type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func TestParseStoredRole(t *testing.T) {
	for _, tt := range storedRoleCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStoredRole(tt.stored)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanUser_Role(t *testing.T) {
	now := time.Now().UTC()
	for _, tt := range storedRoleCases {
		t.Run(tt.name, func(t *testing.T) {
			row := fakeRow{values: []any{
				"7b0c5d0e-0000-4000-8000-000000000001", "alice", "$2a$10$hash", tt.stored,
				"alice@example.com", "Alice", map[string]any(nil), "",
				now, now,
			}}

			user, err := scanUser(row)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, user.Role)
			assert.Equal(t, tt.want == models.RoleAdmin, user.IsAdmin())
		})
	}
}

func TestUserDocument_ToModelRole(t *testing.T) {
	for _, tt := range storedRoleCases {
		t.Run(tt.name, func(t *testing.T) {
			doc := userDocument{ID: bson.NewObjectID(), Username: "alice", Role: tt.stored}

			user, err := doc.toModel()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, doc.ID.Hex(), user.ID)
			assert.Equal(t, tt.want, user.Role)
			assert.Equal(t, tt.want == models.RoleAdmin, user.IsAdmin())
		})
	}
}
