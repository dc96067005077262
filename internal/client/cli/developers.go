package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/devsync/internal/client/client"
	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/dmitrijs2005/devsync/internal/client/reconcile"
)

// List reloads the current page and prints it.
func (a *App) List(ctx context.Context) error {
	if err := a.devService.Refresh(ctx); err != nil && !errors.Is(err, reconcile.ErrSuperseded) {
		printlnFn("Error:", err.Error())
	}
	a.printPage()
	return nil
}

func (a *App) Next(ctx context.Context) error {
	return a.afterPaging(a.devService.NextPage(ctx))
}

func (a *App) Prev(ctx context.Context) error {
	return a.afterPaging(a.devService.PrevPage(ctx))
}

// Page jumps to a 1-based page number as shown in the list header.
func (a *App) Page(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: page <n>")
	}
	n, err := parseInt("page", args[0])
	if err != nil {
		return err
	}
	return a.afterPaging(a.devService.GoToPage(ctx, n-1))
}

// Search filters by a name substring. Without arguments the filter is cleared.
func (a *App) Search(ctx context.Context, args []string) error {
	return a.afterPaging(a.devService.Search(ctx, strings.Join(args, " ")))
}

func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: filter all|fullstack|other")
	}
	f, err := models.ParseEmploymentFilter(args[0])
	if err != nil {
		return err
	}
	return a.afterPaging(a.devService.Filter(ctx, f))
}

func (a *App) afterPaging(err error) error {
	if err != nil && !errors.Is(err, reconcile.ErrSuperseded) {
		return err
	}
	a.printPage()
	return nil
}

func (a *App) Add(ctx context.Context) error {
	d, err := a.inputDeveloper(models.Developer{})
	if err != nil {
		return err
	}

	created, err := a.devService.Create(ctx, d.Input())
	if err != nil {
		return err
	}
	if created.IsPending() {
		printlnFn("Server unreachable, saved locally. It will be sent when the connection is back.")
	} else {
		printlnFn("Created", created.String())
	}
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	current, err := a.developerArg(args, "edit")
	if err != nil {
		return err
	}

	d, err := a.inputDeveloper(current)
	if err != nil {
		return err
	}
	d.ID = current.ID
	d.PhotoURL = current.PhotoURL

	updated, err := a.devService.Update(ctx, d)
	if err != nil {
		return describe(err)
	}
	printlnFn("Updated", updated.String())
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: delete <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.devService.Delete(ctx, id); err != nil {
		return describe(err)
	}
	printlnFn("Deleted", id)
	return nil
}

func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: avatar <id> <path>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var path string
	if len(args) > 1 {
		path = strings.Join(args[1:], " ")
	} else {
		path, err = getSimpleText(a.reader, "Enter image path", a.writer())
		if err != nil {
			return err
		}
	}

	d, err := a.devService.UploadAvatar(ctx, id, path)
	if err != nil {
		return describe(err)
	}
	printlnFn("Avatar uploaded:", a.devService.AvatarURL(d))
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	d, err := a.developerArg(args, "show")
	if err != nil {
		return err
	}

	w := a.writer()
	fmt.Fprintln(w, d.String())
	fmt.Fprintf(w, "  location: %.6f, %.6f\n", d.Lat, d.Lng)
	if url := a.devService.AvatarURL(d); url != "" {
		fmt.Fprintf(w, "  photo: %s\n", url)
	}
	if d.IsPending() {
		fmt.Fprintln(w, "  not synced yet")
	}
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	report, err := a.devService.Sync(ctx)
	if err != nil {
		return err
	}
	if report == (reconcile.DrainReport{}) {
		printlnFn("Nothing to sync")
	}
	a.printPage()
	return nil
}

// Discard drops the creates that never reached the backend, after asking.
func (a *App) Discard(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Discard all unsynced developers? (yes/no)", a.writer())
	if err != nil {
		return err
	}
	ok, err := parseYesNo("answer", answer)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	n, err := a.devService.DiscardPending(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		printlnFn("Nothing to discard")
		return nil
	}
	printlnFn(fmt.Sprintf("Discarded %d unsynced developer(s)", n))
	a.printPage()
	return nil
}

func (a *App) printPage() {
	st := a.devService.State()
	w := a.writer()

	pages := 1
	if st.PageSize > 0 && st.Total > 0 {
		pages = (st.Total + st.PageSize - 1) / st.PageSize
	}
	header := fmt.Sprintf("Page %d of %d, %d developer(s)", st.Page+1, pages, st.Total)
	if st.NameFilter != "" {
		header += fmt.Sprintf(", name ~ %q", st.NameFilter)
	}
	if st.Employment != models.EmploymentAll {
		header += ", " + st.Employment.String()
	}
	if st.Offline {
		header += " [offline]"
	}
	fmt.Fprintln(w, header)

	if st.Err != nil {
		fmt.Fprintln(w, "Last refresh failed:", st.Err.Error())
	}
	if len(st.List) == 0 {
		fmt.Fprintln(w, "No developers")
		return
	}
	for _, d := range st.List {
		fmt.Fprintln(w, d.String())
	}
}

// developerArg resolves the id argument against the page on screen.
func (a *App) developerArg(args []string, cmd string) (models.Developer, error) {
	if len(args) == 0 {
		return models.Developer{}, fmt.Errorf("usage: %s <id>", cmd)
	}
	id, err := parseID(args[0])
	if err != nil {
		return models.Developer{}, err
	}
	d, ok := a.devService.Find(id)
	if !ok {
		return models.Developer{}, fmt.Errorf("developer %d is not on the current page", id)
	}
	return d, nil
}

// inputDeveloper prompts for every editable field, offering the values of
// current as defaults.
func (a *App) inputDeveloper(current models.Developer) (models.Developer, error) {
	w := a.writer()
	var d models.Developer

	name, err := GetDefaultText(a.reader, "Name", current.Name, w)
	if err != nil {
		return d, err
	}
	d.Name = name

	age, err := GetDefaultText(a.reader, "Age", intDefault(current.Age), w)
	if err != nil {
		return d, err
	}
	if d.Age, err = parseInt("age", age); err != nil {
		return d, err
	}

	fullStack, err := GetDefaultText(a.reader, "Full stack (yes/no)", formatYesNo(current.FullStack), w)
	if err != nil {
		return d, err
	}
	if d.FullStack, err = parseYesNo("full stack", fullStack); err != nil {
		return d, err
	}

	if d.EndDate, err = GetDefaultText(a.reader, "End date (YYYY-MM-DD)", current.EndDate, w); err != nil {
		return d, err
	}

	if d.Lat, err = a.inputFloat("Latitude", current.Lat, w); err != nil {
		return d, err
	}
	if d.Lng, err = a.inputFloat("Longitude", current.Lng, w); err != nil {
		return d, err
	}
	return d, nil
}

func (a *App) inputFloat(prompt string, current float64, w io.Writer) (float64, error) {
	def := ""
	if current != 0 {
		def = strconv.FormatFloat(current, 'f', -1, 64)
	}
	s, err := GetDefaultText(a.reader, prompt, def, w)
	if err != nil {
		return 0, err
	}
	return parseFloat(strings.ToLower(prompt), s)
}

func intDefault(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// describe adds a hint to errors the user can act on.
func describe(err error) error {
	switch {
	case errors.Is(err, reconcile.ErrPendingRecord):
		return fmt.Errorf("%w: wait for the next sync", err)
	case client.IsUnavailable(err):
		return fmt.Errorf("%w: only adding works offline", err)
	}
	return err
}
