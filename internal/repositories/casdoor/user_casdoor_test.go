package casdoor

import (
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/course-service/internal/models"
)

func TestMapRole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want models.UserRole
	}{
		{name: "admin", in: "admin", want: models.RoleAdmin},
		{name: "administrator mixed case", in: "Administrator", want: models.RoleAdmin},
		{name: "instructor", in: "instructor", want: models.RoleInstructor},
		{name: "teacher alias", in: "teacher", want: models.RoleInstructor},
		{name: "data analyst", in: "Data Analyst", want: models.RoleAnalyst},
		{name: "student", in: "student", want: models.RoleStudent},
		{name: "unknown defaults to student", in: "guest", want: models.RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapRole(tt.in); got != tt.want {
				t.Errorf("MapRole(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToModel(t *testing.T) {
	tests := []struct {
		name      string
		user      *casdoorsdk.User
		wantRole  models.UserRole
		wantLevel models.AdminLevel
	}{
		{
			name:     "role from roles list",
			user:     &casdoorsdk.User{Id: "u1", Roles: []*casdoorsdk.Role{{Name: "instructor"}}},
			wantRole: models.RoleInstructor,
		},
		{
			name:     "falls back to user type",
			user:     &casdoorsdk.User{Id: "u2", Type: "analyst"},
			wantRole: models.RoleAnalyst,
		},
		{
			name: "admin flag wins with senior tier",
			user: &casdoorsdk.User{
				Id:         "u3",
				IsAdmin:    true,
				Roles:      []*casdoorsdk.Role{{Name: "student"}},
				Properties: map[string]string{"admin_level": "Senior"},
			},
			wantRole:  models.RoleAdmin,
			wantLevel: models.AdminSenior,
		},
		{
			name:      "admin without tier is junior",
			user:      &casdoorsdk.User{Id: "u4", Roles: []*casdoorsdk.Role{{Name: "admin"}}},
			wantRole:  models.RoleAdmin,
			wantLevel: models.AdminJunior,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToModel(tt.user)
			if got.Role != tt.wantRole {
				t.Errorf("Role = %v, want %v", got.Role, tt.wantRole)
			}
			if got.AdminLevel != tt.wantLevel {
				t.Errorf("AdminLevel = %v, want %v", got.AdminLevel, tt.wantLevel)
			}
		})
	}

	if ToModel(nil) != nil {
		t.Error("ToModel(nil) should return nil")
	}
}
