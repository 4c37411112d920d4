package config

// SampleConfig is printed by the config command
const SampleConfig = `# experiment-setup configuration file
# Save as ~/.experiment-setup.yaml or ./.experiment-setup.yaml, or pass --config.

# Database holding the Experiments and ExperimentParameters tables
database:
  host: localhost          # Database hostname or IP
  port: 3306               # Database port
  username: root           # Database username
  password: ""             # Prefer EXPERIMENT_SETUP_DATABASE_PASSWORD
  database: experiments    # Database name
  timeout: 30s             # Connection and statement timeout
  max_retries: 3           # Connection attempts for transient failures

# Where list-backups and restore-from-backup find backup files
backup:
  storage:
    provider: local        # local, s3, azure or gcs
    local:
      base_path: ./backups
    # s3:
    #   bucket: my-backups
    #   region: eu-west-1
    #   prefix: mysql/
    #   endpoint: ""       # Set for S3 compatible stores such as MinIO
    # azure:
    #   account_name: myaccount
    #   account_key: ""
    #   container_name: backups
    #   prefix: mysql/
    # gcs:
    #   bucket: my-backups
    #   prefix: mysql/
    #   credentials_path: /path/to/service-account.json

  # Needed only for .enc backups; set one of the two
  encryption_passphrase: ""
  # encryption_passphrase_file: /path/to/passphrase

  # Time zone for --start/--end and listed timestamps (empty = local time)
  location: ""

log:
  level: normal            # quiet, normal, verbose or debug
  format: text             # text or json
  file: ""                 # Also append logs to this file

# Every key can be overridden from the environment, for example:
# EXPERIMENT_SETUP_DATABASE_HOST=db.example.com
# EXPERIMENT_SETUP_DATABASE_PASSWORD=secret
# EXPERIMENT_SETUP_BACKUP_STORAGE_PROVIDER=s3
# EXPERIMENT_SETUP_BACKUP_STORAGE_S3_BUCKET=my-backups
`
