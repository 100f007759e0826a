package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/passkeeper/internal/client/models"
	"github.com/dmitrijs2005/passkeeper/internal/common"
)

// clearValue entered at an edit prompt empties an optional field.
const clearValue = "-"

const timeLayout = "2006-01-02 15:04"

func (a *App) printCredentials(list []models.Credential) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No credentials")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUSERNAME\tURL\tUPDATED")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Title, c.Username, c.URL, c.UpdatedAt.Local().Format(timeLayout))
	}
	_ = tw.Flush()
}

// List prints the user's credentials without their passwords.
func (a *App) List(ctx context.Context) error {
	list, err := a.api.List(ctx)
	if err != nil {
		return err
	}
	a.printCredentials(list)
	return nil
}

// Show prints one credential including its password.
func (a *App) Show(ctx context.Context, id string) error {
	if id == "" {
		return common.NewValidationError("usage: show <id>", "id")
	}

	list, err := a.api.List(ctx)
	if err != nil {
		return err
	}

	for _, c := range list {
		if c.ID != id {
			continue
		}
		fmt.Fprintf(a.out, "Title:       %s\n", c.Title)
		fmt.Fprintf(a.out, "Username:    %s\n", c.Username)
		fmt.Fprintf(a.out, "Password:    %s\n", c.Password)
		fmt.Fprintf(a.out, "URL:         %s\n", c.URL)
		fmt.Fprintf(a.out, "Description: %s\n", c.Description)
		fmt.Fprintf(a.out, "Created:     %s\n", c.CreatedAt.Local().Format(timeLayout))
		fmt.Fprintf(a.out, "Updated:     %s\n", c.UpdatedAt.Local().Format(timeLayout))
		return nil
	}
	return common.ErrorNotFound
}

// Add prompts for a new credential and stores it.
func (a *App) Add(ctx context.Context) error {
	var in models.CredentialInput
	var err error

	if in.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if in.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}

	pw, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	in.Password = string(pw)

	if in.URL, err = getSimpleText(a.reader, "URL (optional)", a.out); err != nil {
		return err
	}
	if in.Description, err = GetMultiline(a.reader, "Description (optional)", a.out); err != nil {
		return err
	}

	c, err := a.api.Create(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved %q with id %s\n", c.Title, c.ID)
	return nil
}

// promptChange reads a replacement value. Empty input keeps the field;
// clearValue empties it when clearable.
func (a *App) promptChange(label, current string, clearable bool) (*string, error) {
	prompt := fmt.Sprintf("%s [%s] (Enter to keep", label, current)
	if clearable {
		prompt += ", '" + clearValue + "' to clear"
	}
	prompt += ")"

	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}

	switch {
	case v == "":
		return nil, nil
	case clearable && v == clearValue:
		empty := ""
		return &empty, nil
	default:
		return &v, nil
	}
}

// Edit prompts for changes to the credential id and applies them.
func (a *App) Edit(ctx context.Context, id string) error {
	if id == "" {
		return common.NewValidationError("usage: edit <id>", "id")
	}

	list, err := a.api.List(ctx)
	if err != nil {
		return err
	}
	var current *models.Credential
	for i := range list {
		if list[i].ID == id {
			current = &list[i]
			break
		}
	}
	if current == nil {
		return common.ErrorNotFound
	}

	var p models.CredentialPatch
	if p.Title, err = a.promptChange("Title", current.Title, false); err != nil {
		return err
	}
	if p.Username, err = a.promptChange("Username", current.Username, false); err != nil {
		return err
	}

	pw, err := getPassword("New password (Enter to keep)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if len(pw) > 0 {
		s := string(pw)
		p.Password = &s
	}

	if p.URL, err = a.promptChange("URL", current.URL, true); err != nil {
		return err
	}
	if p.Description, err = a.promptChange("Description", current.Description, true); err != nil {
		return err
	}

	if p.Empty() {
		fmt.Fprintln(a.out, "Nothing to change")
		return nil
	}

	c, err := a.api.Update(ctx, id, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %q\n", c.Title)
	return nil
}

// Delete removes the credential id after confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	if id == "" {
		return common.NewValidationError("usage: delete <id>", "id")
	}

	answer, err := getSimpleText(a.reader, "Delete "+id+"? (y/N)", a.out)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.api.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// Dashboard prints the credential count and the most recently updated ones.
func (a *App) Dashboard(ctx context.Context) error {
	d, err := a.api.Dashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Total passwords: %d\nRecently updated:\n", d.TotalPasswords)
	a.printCredentials(d.Passwords)
	return nil
}
