package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/trezcool/confadmin/core/audit"
)

func (cli *commandLine) audit(filter audit.QueryFilter) error {
	entries, err := cli.auditSvc.Query(context.Background(), filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTOR\tACTION\tRESOURCE\tSUMMARY")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.CreatedAt.Format(time.RFC3339), e.ActorEmail, e.Action, e.Resource, e.Summary)
	}
	return w.Flush()
}
