package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrRefreshInvalid     ErrCode = "REFRESH_TOKEN_INVALID"
	ErrAccountPending     ErrCode = "ACCOUNT_PENDING"
	ErrAccountRejected    ErrCode = "ACCOUNT_REJECTED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrAdminAccessOnly  ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidID       ErrCode = "INVALID_ID"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrConsentRequired ErrCode = "CONSENT_REQUIRED"
	ErrReasonRequired  ErrCode = "REASON_REQUIRED"
	ErrInvalidRole     ErrCode = "INVALID_ROLE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrUserNotFound    ErrCode = "USER_NOT_FOUND"
	ErrAccountNotFound ErrCode = "ACCOUNT_NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrEmailTaken      ErrCode = "EMAIL_TAKEN"
	ErrUsernameTaken   ErrCode = "USERNAME_TAKEN"
	ErrAlreadyDecided  ErrCode = "ALREADY_DECIDED"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

var messages = map[ErrCode]string{
	ErrInvalidCredentials: "E-posta/kullanıcı adı veya şifre hatalı.",
	ErrTokenRequired:      "Oturum açmanız gerekiyor.",
	ErrTokenInvalid:       "Oturumunuz geçersiz veya süresi dolmuş. Lütfen tekrar giriş yapın.",
	ErrRefreshInvalid:     "Oturum yenilenemedi. Lütfen tekrar giriş yapın.",
	ErrAccountPending:     "Hesabınız henüz yönetici onayı bekliyor.",
	ErrAccountRejected:    "Kayıt başvurunuz reddedildi.",

	ErrForbidden:        "Bu işlem için yetkiniz yok.",
	ErrPermissionDenied: "Bu işlem için yetkiniz yok.",
	ErrAdminAccessOnly:  "Bu alan yalnızca yöneticilere açıktır.",

	ErrValidation:      "Doğrulama başarısız. Lütfen girdiğiniz bilgileri kontrol edin.",
	ErrInvalidID:       "Geçersiz kimlik biçimi.",
	ErrInvalidPayload:  "İstek gövdesi geçersiz.",
	ErrConsentRequired: "Kayıt için açık rıza onayı gereklidir.",
	ErrReasonRequired:  "Reddetme sebebi boş bırakılamaz.",
	ErrInvalidRole:     "Geçersiz rol. Rol content_admin veya super_admin olmalıdır.",

	ErrNotFound:        "Kayıt bulunamadı.",
	ErrUserNotFound:    "Kullanıcı bulunamadı.",
	ErrAccountNotFound: "Bu e-posta adresine ait bir hesap bulunamadı.",
	ErrConflict:        "Kayıt zaten mevcut.",
	ErrEmailTaken:      "Bu e-posta adresi zaten kayıtlı.",
	ErrUsernameTaken:   "Bu kullanıcı adı zaten alınmış.",
	ErrAlreadyDecided:  "Bu başvuru hakkında zaten karar verilmiş.",
	ErrActionForbidden: "Kendi yönetici rolünüzü değiştiremezsiniz.",

	ErrFileRequired:    "Öğrenci belgesi yüklenmesi zorunludur.",
	ErrUnsupportedFile: "Desteklenmeyen dosya türü. PDF, JPEG, PNG veya WEBP yükleyin.",
	ErrFileTooLarge:    "Dosya boyutu sınırı aşıyor.",

	ErrRateLimitExceeded: "Çok fazla istek gönderildi. Lütfen daha sonra tekrar deneyin.",

	ErrInternal: "Sunucuda beklenmeyen bir hata oluştu.",
}

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "İşlem tamamlanamadı."
}
