package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/istun/mezunlar-backend/internal/model"
)

const dateLayout = "2006-01-02 15:04"

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func renderUsers(out io.Writer, users []model.User, withDoc bool) {
	tw := newTable(out)
	if withDoc {
		fmt.Fprintln(tw, "ID\tAD SOYAD\tE-POSTA\tSINIF\tBAŞVURU\tBELGE")
	} else {
		fmt.Fprintln(tw, "ID\tAD SOYAD\tE-POSTA\tDURUM\tROL\tBAŞVURU")
	}
	for _, u := range users {
		if withDoc {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				u.ID, u.FullName(), u.Email, u.ClassStatus, u.CreatedAt.Local().Format(dateLayout), u.StudentDocURL)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.FullName(), u.Email, u.Status, u.AdminRole, u.CreatedAt.Local().Format(dateLayout))
	}
	tw.Flush()
}

func renderAdmins(out io.Writer, admins []model.AdminSummary) {
	tw := newTable(out)
	fmt.Fprintln(tw, "E-POSTA\tAD SOYAD\tROL")
	for _, a := range admins {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\n", a.Email, a.Name, a.Surname, a.Role)
	}
	tw.Flush()
}

func renderRoster(out io.Writer, profiles []model.PublicProfile) {
	tw := newTable(out)
	fmt.Fprintln(tw, "AD SOYAD\tKULLANICI ADI\tSINIF\tÇALIŞMA DURUMU")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\n", p.Name, p.Surname, p.Username, p.ClassStatus, p.WorkStatus)
	}
	tw.Flush()
}
