package repository

const (
	createVideoQuery = `INSERT INTO videos (id, filename, s3_key, size_bytes, format)
					VALUES ($1, $2, $3, $4, $5) RETURNING *`
	getVideosQuery = `SELECT id, filename, s3_key, size_bytes, duration_seconds, format, uploaded_at FROM videos
					ORDER BY uploaded_at DESC OFFSET $1 LIMIT $2`
	getVideoByIDQuery = `SELECT id, filename, s3_key, size_bytes, duration_seconds, format, uploaded_at FROM videos
					WHERE id = $1`
	getVideosByIDsQuery = `SELECT id, filename, s3_key, size_bytes, duration_seconds, format, uploaded_at FROM videos
					WHERE id = ANY($1)`
	getTotalVideosCountQuery = `SELECT COUNT(id) FROM videos`
	setDurationIfUnsetQuery  = `UPDATE videos SET duration_seconds = $2 WHERE id = $1 AND duration_seconds IS NULL`
	videoExistsQuery         = `SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)`
	deleteVideoQuery         = `DELETE FROM videos WHERE id = $1`
)
