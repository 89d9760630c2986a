package file

import (
	"net/http"
	"os"

	"clocker/backend/foundation/web"

	"github.com/pkg/errors"
)

type Resolver interface {
	Resolve(rel string) (string, error)
}

type Controller struct {
	media Resolver
}

func NewController(media Resolver) *Controller {
	return &Controller{media}
}

// File serves a stored photo or thumbnail. Directories are never listed.
func (fc Controller) File(c *web.Context) error {
	path, err := fc.media.Resolve(c.Param("filepath"))
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusBadRequest))
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return c.RespondError(web.NewRequestError(errors.New("file not found"), http.StatusNotFound))
	}

	http.ServeFile(c.Writer, c.Request, path)
	return nil
}
