package command

import (
	"strings"

	"github.com/gundaabinav333/authshell/internal/cli/output"
	"github.com/gundaabinav333/authshell/internal/core/domain"
)

// userView is a credential as printed by login and whoami.
type userView struct {
	*domain.Credential
}

func (v userView) MarshalYAML() (any, error) { return v.Credential, nil }

func (v userView) Table() *output.Table {
	return output.NewTable("ID", "NAME", "EMAIL", "ROLES").
		AddRow(v.ID, v.Name, v.Email, strings.Join(v.Roles, ","))
}

// statusView is printed by status.
type statusView struct {
	Status string             `json:"status" yaml:"status"`
	Server string             `json:"server" yaml:"server"`
	User   *domain.Credential `json:"user,omitempty" yaml:"user,omitempty"`
	Error  string             `json:"error,omitempty" yaml:"error,omitempty"`
}

func (v statusView) Table() *output.Table {
	fields := map[string]string{
		"status": v.Status,
		"server": v.Server,
	}
	if v.User != nil {
		fields["user"] = v.User.Name
		fields["email"] = v.User.Email
		fields["roles"] = strings.Join(v.User.Roles, ",")
	}
	if v.Error != "" {
		fields["error"] = v.Error
	}
	return output.KeyValues(fields)
}
