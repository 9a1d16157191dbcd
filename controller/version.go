package controller

import (
	"net/http"

	"github.com/andrewbenington/group-mix/requests"
	"github.com/andrewbenington/group-mix/version"
)

func (c *Controller) GetVersion(w http.ResponseWriter, r *http.Request) {
	requests.RespondJSON(w, http.StatusOK, version.Get(c.Store))
}
