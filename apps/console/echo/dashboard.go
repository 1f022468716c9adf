package echoconsole

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/confadmin/core/nav"
	"github.com/trezcool/confadmin/services/backend"
)

// maxDashboardFetches bounds the concurrent backend calls of the dashboard.
const maxDashboardFetches = 4

type (
	card struct {
		Label string
		Path  string
		Icon  string
		Count int
		Error string
	}

	dashboardPage struct {
		Cards []card
	}
)

// dashboard counts the items of every menu entry visible to the user, concurrently.
// A failing count is shown on its card; only an expired session fails the page.
func (s *Server) dashboard(ctx echo.Context) error {
	usr, _ := currentUser(ctx)

	var cards []card
	for _, sec := range nav.Console.For(usr.Roles, "/") {
		for _, item := range sec.Items {
			if _, ok := s.counters[item.Path]; ok {
				cards = append(cards, card{Label: item.Label, Path: item.Path, Icon: item.Icon})
			}
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx.Request().Context())
	g.SetLimit(maxDashboardFetches)
	for i := range cards {
		i := i
		count := s.counters[cards[i].Path]
		g.Go(func() error {
			n, err := count(gctx, usr)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, backend.ErrUnauthorized) {
					return err
				}
				cards[i].Error = "unavailable"
				return nil
			}
			cards[i].Count = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "counting dashboard items")
	}
	return s.render(ctx, http.StatusOK, "dashboard", "Overview", dashboardPage{Cards: cards})
}
