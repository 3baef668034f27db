package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// SuccessWithWarning is Success plus a meta.warning annotation. Used when
// the operation committed but a best-effort side effect (e.g. the
// confirmation email) failed.
func SuccessWithWarning(c *gin.Context, statusCode int, data interface{}, warning string) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
		"meta": gin.H{
			"warning": warning,
		},
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
