package config

// DefaultJobs lists the history tables of the two supported applications.
// Tables missing from the source are skipped at run time.
func DefaultJobs() []Job {
	return []Job{
		// nas-tools
		{
			Source:  "DOWNLOAD_HISTORY",
			Columns: []string{"TITLE", "YEAR", "TYPE", "TMDBID", "TORRENT", "SE", "SAVE_PATH"},
			Dest:    "NT_DOWNLOAD_HISTORY",
		},
		{
			Source:  "TRANSFER_HISTORY",
			Columns: []string{"TYPE", "TMDBID", "TITLE", "YEAR", "SEASON_EPISODE", "SOURCE_FILENAME", "DEST_FILENAME"},
			Dest:    "NT_TRANSFER_HISTORY",
		},
		// nas-tools, older releases
		{
			Source:  "USERRSS_TASK_HISTORY",
			Columns: []string{"TITLE"},
			Dest:    "NT_TRANSFER_HISTORY",
		},
		// movie-pilot v2
		{
			Source:  "downloadhistory",
			Columns: []string{"torrent_name"},
			Dest:    "MPV2_DOWNLOAD_HISTORY",
		},
		{
			Source:  "transferhistory",
			Columns: []string{"tmdbid", "seasons", "episodes", "files"},
			Dest:    "MPV2_TRANSFER_HISTORY",
		},
	}
}
