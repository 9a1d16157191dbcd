package app

import "github.com/gorilla/mux"

func (a *App) initRouter() {
	a.Router = mux.NewRouter()

	// health
	a.Router.HandleFunc("/health", a.Controller.Health).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/version", a.Controller.GetVersion).Methods("GET", "OPTIONS")

	// group rooms
	a.Router.HandleFunc("/room", a.Controller.CreateRoom).Methods("POST", "OPTIONS")
	a.Router.HandleFunc("/new-session", a.Controller.NewSession).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/join/{room_id}", a.Controller.Join).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/room/{room_id}", a.Controller.GetRoom).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/room/{room_id}", a.Controller.DeleteRoom).Methods("DELETE", "OPTIONS")
	a.Router.HandleFunc("/room/{room_id}/merge", a.Controller.MergeRoom).Methods("POST", "OPTIONS")

	// spotify login
	a.Router.HandleFunc("/login", a.Controller.Login).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/callback", a.Controller.Callback).Methods("GET", "OPTIONS")

	// solo
	a.Router.HandleFunc("/solo", a.Controller.Solo).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/solo/top-tracks", a.Controller.SoloTopTracks).Methods("POST", "OPTIONS")
	a.Router.HandleFunc("/solo/playlist", a.Controller.SoloPlaylist).Methods("POST", "OPTIONS")
}
