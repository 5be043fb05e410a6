package accounts

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/cli"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/repository"
	"github.com/julianstephens/habitual/internal/state"
	"github.com/julianstephens/habitual/internal/validation"
)

type RegisterCmd struct {
	Name     string `help:"Display name."`
	Username string `help:"Username."`
	Email    string `help:"Email address."`
	Password string `help:"Password (prompted when omitted)."`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	form := validation.Registration{
		Name:     c.Name,
		Username: c.Username,
		Email:    c.Email,
		Password: c.Password,
		Confirm:  c.Password,
	}
	if c.Name == "" || c.Username == "" || c.Email == "" || c.Password == "" {
		if err := registrationForm(&form).Run(); err != nil {
			return err
		}
	}

	users := ctx.Users()
	defer users.Close()

	result, done := users.Submit(form)
	if !result.Valid() {
		return result.Err()
	}
	<-done

	if users.RegisterResult() != state.RegisterSuccess {
		return apperrors.WithHint(
			fmt.Errorf("registration failed for %s", form.Email),
			"the email may already be registered; details are in the log",
		)
	}
	user, _ := users.Current()
	if _, err := ctx.Sessions.Start(user.ID, user.Email); err != nil {
		return fmt.Errorf("registered but could not sign in: %w", err)
	}
	ctx.Printf("%s Registered and signed in as %s (@%s)\n", cli.Mark(true), user.Name, user.Username)
	return nil
}

func registrationForm(f *validation.Registration) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.Name),
			huh.NewInput().Title("Username").Value(&f.Username),
			huh.NewInput().Title("Email").Value(&f.Email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&f.Confirm),
		),
	).WithTheme(huh.ThemeDracula())
}

type LoginCmd struct {
	Email    string `arg:"" help:"Email address."`
	Password string `help:"Password (prompted when omitted)."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		err := huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Run()
		if err != nil {
			return err
		}
	}

	repo := repository.NewUsers(ctx.Store, ctx.Credentials())
	userID, err := repo.SignIn(ctx.Ctx, c.Email, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return apperrors.WithHint(err, "check the email and password, or run 'habitual register'")
	}
	if err != nil {
		return err
	}
	s, err := ctx.Sessions.Start(userID, auth.NormalizeEmail(c.Email))
	if err != nil {
		return err
	}
	ctx.Printf("%s Signed in as %s\n", cli.Mark(true), s.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Sessions.End(); err != nil {
		return err
	}
	ctx.Println("Signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	users := ctx.Users()
	defer users.Close()
	<-users.Fetch(s.UserID)

	user, ok := users.Current()
	if !ok {
		return fmt.Errorf("signed in as %s but no profile was found", s.Email)
	}
	ctx.Printf("%s (@%s) <%s>\n", user.Name, user.Username, user.Email)
	if !s.IssuedAt.IsZero() {
		ctx.Println(cli.MutedStyle.Render("signed in " + s.IssuedAt.Local().Format("2006-01-02 15:04")))
	}
	return nil
}
