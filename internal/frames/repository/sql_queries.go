package repository

const (
	deleteFramesByVideoQuery = `DELETE FROM video_frames WHERE video_id = $1`
	insertFrameQuery         = `INSERT INTO video_frames (video_id, frame_index, timestamp_seconds, embedding, scene_label)
					VALUES ($1, $2, $3, $4::vector, $5)`
	listFramesByVideoQuery = `SELECT id, frame_index, timestamp_seconds FROM video_frames
					WHERE video_id = $1 ORDER BY timestamp_seconds, frame_index`
	countFramesQuery        = `SELECT COUNT(id) FROM video_frames`
	countFramesByVideoQuery = `SELECT v.id AS video_id, v.filename, COUNT(f.id) AS frame_count
					FROM videos v LEFT JOIN video_frames f ON f.video_id = v.id
					GROUP BY v.id, v.filename ORDER BY v.uploaded_at`

	upsertVectorQuery = `INSERT INTO frame_vectors (id, video_id, frame_index, timestamp_seconds, embedding)
					VALUES ($1, $2, $3, $4, $5::vector)
					ON CONFLICT (id) DO UPDATE SET video_id = EXCLUDED.video_id,
						frame_index = EXCLUDED.frame_index,
						timestamp_seconds = EXCLUDED.timestamp_seconds,
						embedding = EXCLUDED.embedding`
	queryVectorsQuery = `SELECT id, video_id, frame_index, timestamp_seconds, 1 - (embedding <=> $1::vector) AS score
					FROM frame_vectors ORDER BY embedding <=> $1::vector LIMIT $2`
	queryVectorsByVideosQuery = `SELECT id, video_id, frame_index, timestamp_seconds, 1 - (embedding <=> $1::vector) AS score
					FROM frame_vectors WHERE video_id = ANY($3) ORDER BY embedding <=> $1::vector LIMIT $2`
	deleteVectorsByVideoQuery = `DELETE FROM frame_vectors WHERE video_id = $1`
	countVectorsQuery         = `SELECT COUNT(id) AS total_vectors FROM frame_vectors`
)
