package models

// LoginRequest carries credentials submitted to POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the signed session token on successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// DownloadRequest carries a remote-source URL submission.
type DownloadRequest struct {
	URL string `json:"url"`
}

// UploadResponse is the outcome of a job submission.
//
// SessionID is present for remote-source jobs so the client can attach to the
// progress stream; it is absent for direct uploads.
type UploadResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	LogID     *int64 `json:"log_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	IsAdmin     bool    `json:"is_admin"`
	LibraryPath *string `json:"library_path,omitempty"`
}

// ChangePasswordRequest lets a user rotate their own password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AdminChangePasswordRequest lets an admin set another user's password.
type AdminChangePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// UpdateUsernameRequest lets a user rename their account.
type UpdateUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

// UpdateLibraryPathRequest points a user at a different library root.
type UpdateLibraryPathRequest struct {
	LibraryPath string `json:"library_path"`
}

// UpdateSettingRequest writes one runtime setting key.
type UpdateSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
