package vault

import (
	models "docvault/internal/domain/models/vault"
)

// Action is an operation gated on a folder
type Action int

const (
	ActionOpenFolder Action = iota
	ActionDownloadFile
	ActionUploadFile
	ActionCreateSubfolder
	ActionRenameFolder
	ActionRenameFile
	ActionDeleteFile
	ActionDeleteFolder
	ActionManagePermissions
	ActionSetPassword
)

func (a Action) String() string {
	switch a {
	case ActionOpenFolder:
		return "open folder"
	case ActionDownloadFile:
		return "download file"
	case ActionUploadFile:
		return "upload file"
	case ActionCreateSubfolder:
		return "create subfolder"
	case ActionRenameFolder:
		return "rename folder"
	case ActionRenameFile:
		return "rename file"
	case ActionDeleteFile:
		return "delete file"
	case ActionDeleteFolder:
		return "delete folder"
	case ActionManagePermissions:
		return "manage permissions"
	case ActionSetPassword:
		return "set folder password"
	default:
		return "unknown action"
	}
}

// Requirement is what the principal needs on the target folder. Both gates are
// independent: a grant does not open a locked folder and an unlock grants nothing.
type Requirement struct {
	Level    models.Level
	Unlocked bool
}

// folderPolicy is the single table of per-action requirements. Uploading only
// needs read, matching the original product's behaviour.
var folderPolicy = map[Action]Requirement{
	ActionOpenFolder:        {Level: models.LevelRead, Unlocked: true},
	ActionDownloadFile:      {Level: models.LevelRead, Unlocked: true},
	ActionUploadFile:        {Level: models.LevelRead, Unlocked: true},
	ActionCreateSubfolder:   {Level: models.LevelWrite, Unlocked: true},
	ActionRenameFolder:      {Level: models.LevelWrite, Unlocked: true},
	ActionRenameFile:        {Level: models.LevelWrite, Unlocked: true},
	ActionDeleteFile:        {Level: models.LevelWrite, Unlocked: true},
	ActionDeleteFolder:      {Level: models.LevelAdmin},
	ActionManagePermissions: {Level: models.LevelAdmin},
	ActionSetPassword:       {Level: models.LevelAdmin},
}

// RequirementFor returns the requirement of an action
func RequirementFor(a Action) Requirement {
	return folderPolicy[a]
}
